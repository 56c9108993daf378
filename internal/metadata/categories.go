// Package metadata turns SimDB's flat dotted-key metadata payloads into
// typed category records. Every field in every category is optional: absence
// means the originating simulation code did not report it, never an error.
package metadata

// Composition holds plasma composition fractions (scalars only). Values are
// fractions of species concentration.
type Composition struct {
	Argon            *float64 `json:"argon,omitempty"`
	Beryllium        *float64 `json:"beryllium,omitempty"`
	Carbon           *float64 `json:"carbon,omitempty"`
	Deuterium        *float64 `json:"deuterium,omitempty"`
	DeuteriumTritium *float64 `json:"deuterium_tritium,omitempty"`
	Helium3          *float64 `json:"helium_3,omitempty"`
	Helium4          *float64 `json:"helium_4,omitempty"`
	Hydrogen         *float64 `json:"hydrogen,omitempty"`
	Krypton          *float64 `json:"krypton,omitempty"`
	Neon             *float64 `json:"neon,omitempty"`
	Nitrogen         *float64 `json:"nitrogen,omitempty"`
	Oxygen           *float64 `json:"oxygen,omitempty"`
	Tritium          *float64 `json:"tritium,omitempty"`
	Tungsten         *float64 `json:"tungsten,omitempty"`
	Xenon            *float64 `json:"xenon,omitempty"`
	ZEffective       *float64 `json:"z_effective,omitempty"`
}

func (c *Composition) set(field string, v any) bool {
	f := toFloat(v)
	if f == nil {
		return false
	}
	switch field {
	case "argon":
		c.Argon = f
	case "beryllium":
		c.Beryllium = f
	case "carbon":
		c.Carbon = f
	case "deuterium":
		c.Deuterium = f
	case "deuterium_tritium":
		c.DeuteriumTritium = f
	case "helium_3":
		c.Helium3 = f
	case "helium_4":
		c.Helium4 = f
	case "hydrogen":
		c.Hydrogen = f
	case "krypton":
		c.Krypton = f
	case "neon":
		c.Neon = f
	case "nitrogen":
		c.Nitrogen = f
	case "oxygen":
		c.Oxygen = f
	case "tritium":
		c.Tritium = f
	case "tungsten":
		c.Tungsten = f
	case "xenon":
		c.Xenon = f
	case "z_effective":
		c.ZEffective = f
	default:
		return false
	}
	return true
}

// IDSProperties holds IDS file properties and provenance metadata.
type IDSProperties struct {
	Comment                       *string `json:"comment,omitempty"`
	CreationDate                  *string `json:"creation_date,omitempty"`
	HomogeneousTime               *int    `json:"homogeneous_time,omitempty"`
	Provider                      *string `json:"provider,omitempty"`
	VersionPutDataDictionary      *string `json:"version_put_data_dictionary,omitempty"`
	VersionPutAccessLayer         *string `json:"version_put_access_layer,omitempty"`
	VersionPutAccessLayerLanguage *string `json:"version_put_access_layer_language,omitempty"`
	ProvenanceNodeReferenceName   *string `json:"provenance_node_reference_name,omitempty"`
}

func (p *IDSProperties) set(field string, v any) bool {
	switch field {
	case "comment":
		p.Comment = toString(v)
	case "creation_date":
		p.CreationDate = toString(v)
	case "homogeneous_time":
		p.HomogeneousTime = toInt(v)
		return p.HomogeneousTime != nil
	case "provider":
		p.Provider = toString(v)
	case "version_put_data_dictionary":
		p.VersionPutDataDictionary = toString(v)
	case "version_put_access_layer":
		p.VersionPutAccessLayer = toString(v)
	case "version_put_access_layer_language":
		p.VersionPutAccessLayerLanguage = toString(v)
	case "provenance_node_reference_name":
		p.ProvenanceNodeReferenceName = toString(v)
	default:
		return false
	}
	return true
}

// GlobalQuantities holds provenance annotations for global plasma
// parameters: which IDS supplies each quantity. The quantity values
// themselves are time series and are fetched via IDS files, not metadata.
type GlobalQuantities struct {
	B0Source                            *string `json:"b0_source,omitempty"`
	BetaPolSource                       *string `json:"beta_pol_source,omitempty"`
	BetaTorSource                       *string `json:"beta_tor_source,omitempty"`
	BetaTorNormSource                   *string `json:"beta_tor_norm_source,omitempty"`
	CurrentBootstrapSource              *string `json:"current_bootstrap_source,omitempty"`
	CurrentNonInductiveSource           *string `json:"current_non_inductive_source,omitempty"`
	EnergyDiamagneticSource             *string `json:"energy_diamagnetic_source,omitempty"`
	EnergyThermalSource                 *string `json:"energy_thermal_source,omitempty"`
	HFactorSource                       *string `json:"h_factor_source,omitempty"`
	IPSource                            *string `json:"ip_source,omitempty"`
	LISource                            *string `json:"li_source,omitempty"`
	PowerRadiatedInsideSeparatrixSource *string `json:"power_radiated_inside_separatrix_source,omitempty"`
	PowerRadiatedTotalSource            *string `json:"power_radiated_total_source,omitempty"`
	Q95Source                           *string `json:"q_95_source,omitempty"`
	R0Source                            *string `json:"r0_source,omitempty"`
	TauEnergySource                     *string `json:"tau_energy_source,omitempty"`
	VLoopSource                         *string `json:"v_loop_source,omitempty"`
}

func (g *GlobalQuantities) set(field string, v any) bool {
	s := toString(v)
	if s == nil {
		return false
	}
	switch field {
	case "b0_source":
		g.B0Source = s
	case "beta_pol_source":
		g.BetaPolSource = s
	case "beta_tor_source":
		g.BetaTorSource = s
	case "beta_tor_norm_source":
		g.BetaTorNormSource = s
	case "current_bootstrap_source":
		g.CurrentBootstrapSource = s
	case "current_non_inductive_source":
		g.CurrentNonInductiveSource = s
	case "energy_diamagnetic_source":
		g.EnergyDiamagneticSource = s
	case "energy_thermal_source":
		g.EnergyThermalSource = s
	case "h_factor_source":
		g.HFactorSource = s
	case "ip_source":
		g.IPSource = s
	case "li_source":
		g.LISource = s
	case "power_radiated_inside_separatrix_source":
		g.PowerRadiatedInsideSeparatrixSource = s
	case "power_radiated_total_source":
		g.PowerRadiatedTotalSource = s
	case "q_95_source":
		g.Q95Source = s
	case "r0_source":
		g.R0Source = s
	case "tau_energy_source":
		g.TauEnergySource = s
	case "v_loop_source":
		g.VLoopSource = s
	default:
		return false
	}
	return true
}

// HeatingCurrentDrive holds heating and current drive scalars, one set of
// fields per device slot as reported by the source system.
type HeatingCurrentDrive struct {
	EC0PowerSource *string `json:"ec_0_power_source,omitempty"`

	IC0PowerSource *string `json:"ic_0_power_source,omitempty"`

	NBI0Angle       *float64 `json:"nbi_0_angle,omitempty"`
	NBI0Direction   *int     `json:"nbi_0_direction,omitempty"`
	NBI0PowerSource *string  `json:"nbi_0_power_source,omitempty"`
	NBI0Voltage     *float64 `json:"nbi_0_voltage,omitempty"`
	NBI1Angle       *float64 `json:"nbi_1_angle,omitempty"`
	NBI1Direction   *int     `json:"nbi_1_direction,omitempty"`
	NBI1PowerSource *string  `json:"nbi_1_power_source,omitempty"`
	NBI1Voltage     *float64 `json:"nbi_1_voltage,omitempty"`

	LH0PowerSource *string `json:"lh_0_power_source,omitempty"`
}

func (h *HeatingCurrentDrive) set(field string, v any) bool {
	switch field {
	case "ec_0_power_source":
		h.EC0PowerSource = toString(v)
		return h.EC0PowerSource != nil
	case "ic_0_power_source":
		h.IC0PowerSource = toString(v)
		return h.IC0PowerSource != nil
	case "nbi_0_angle":
		h.NBI0Angle = toFloat(v)
		return h.NBI0Angle != nil
	case "nbi_0_direction":
		h.NBI0Direction = toInt(v)
		return h.NBI0Direction != nil
	case "nbi_0_power_source":
		h.NBI0PowerSource = toString(v)
		return h.NBI0PowerSource != nil
	case "nbi_0_voltage":
		h.NBI0Voltage = toFloat(v)
		return h.NBI0Voltage != nil
	case "nbi_1_angle":
		h.NBI1Angle = toFloat(v)
		return h.NBI1Angle != nil
	case "nbi_1_direction":
		h.NBI1Direction = toInt(v)
		return h.NBI1Direction != nil
	case "nbi_1_power_source":
		h.NBI1PowerSource = toString(v)
		return h.NBI1PowerSource != nil
	case "nbi_1_voltage":
		h.NBI1Voltage = toFloat(v)
		return h.NBI1Voltage != nil
	case "lh_0_power_source":
		h.LH0PowerSource = toString(v)
		return h.LH0PowerSource != nil
	default:
		return false
	}
}

// Boundary holds plasma boundary source annotations.
type Boundary struct {
	StrikePointInnerRSource *string `json:"strike_point_inner_r_source,omitempty"`
	StrikePointInnerZSource *string `json:"strike_point_inner_z_source,omitempty"`
	StrikePointOuterRSource *string `json:"strike_point_outer_r_source,omitempty"`
	StrikePointOuterZSource *string `json:"strike_point_outer_z_source,omitempty"`
	TypeSource              *string `json:"type_source,omitempty"`
	XPointSource            *string `json:"x_point_source,omitempty"`
}

func (b *Boundary) set(field string, v any) bool {
	s := toString(v)
	if s == nil {
		return false
	}
	switch field {
	case "strike_point_inner_r_source":
		b.StrikePointInnerRSource = s
	case "strike_point_inner_z_source":
		b.StrikePointInnerZSource = s
	case "strike_point_outer_r_source":
		b.StrikePointOuterRSource = s
	case "strike_point_outer_z_source":
		b.StrikePointOuterZSource = s
	case "type_source":
		b.TypeSource = s
	case "x_point_source":
		b.XPointSource = s
	default:
		return false
	}
	return true
}

// Code holds extended code information beyond the well-known name/version
// pair, including library dependency slots.
type Code struct {
	Commit      *string `json:"commit,omitempty"`
	Description *string `json:"description,omitempty"`
	Repository  *string `json:"repository,omitempty"`

	Library0Commit     *string `json:"library_0_commit,omitempty"`
	Library0Name       *string `json:"library_0_name,omitempty"`
	Library0Repository *string `json:"library_0_repository,omitempty"`
	Library0Version    *string `json:"library_0_version,omitempty"`
	Library1Commit     *string `json:"library_1_commit,omitempty"`
	Library1Name       *string `json:"library_1_name,omitempty"`
	Library1Repository *string `json:"library_1_repository,omitempty"`
	Library1Version    *string `json:"library_1_version,omitempty"`
}

func (c *Code) set(field string, v any) bool {
	s := toString(v)
	if s == nil {
		return false
	}
	switch field {
	case "commit":
		c.Commit = s
	case "description":
		c.Description = s
	case "repository":
		c.Repository = s
	case "library_0_commit":
		c.Library0Commit = s
	case "library_0_name":
		c.Library0Name = s
	case "library_0_repository":
		c.Library0Repository = s
	case "library_0_version":
		c.Library0Version = s
	case "library_1_commit":
		c.Library1Commit = s
	case "library_1_name":
		c.Library1Name = s
	case "library_1_repository":
		c.Library1Repository = s
	case "library_1_version":
		c.Library1Version = s
	default:
		return false
	}
	return true
}

package mission

import "exodash/domain/candidate"

// Supported mission identifiers.
const (
	Kepler = "Kepler"
	K2     = "K2"
	TESS   = "TESS"
)

var order = []string{Kepler, K2, TESS}

var schemas = map[string]Schema{
	Kepler: {
		MissionID: Kepler,
		Title:     "Kepler Objects of Interest",
		Features: []FeatureDescriptor{
			numeric("koi_period", "Orbital period", "days", 0, 1000, 0.001),
			numeric("koi_time0bk", "Transit epoch", "BKJD", 0, 2000, 0.001),
			numeric("koi_impact", "Impact parameter", "", 0, 2, 0.01),
			numeric("koi_duration", "Transit duration", "hours", 0, 100, 0.01),
			numeric("koi_depth", "Transit depth", "ppm", 0, 1e6, 1),
			numeric("koi_prad", "Planetary radius", "Earth radii", 0, 300, 0.01),
			numeric("koi_teq", "Equilibrium temperature", "K", 0, 5000, 1),
			numeric("koi_insol", "Insolation flux", "Earth flux", 0, 1e5, 0.01),
			numeric("koi_model_snr", "Transit signal-to-noise", "", 0, 10000, 0.1),
			numeric("koi_steff", "Stellar effective temperature", "K", 2000, 15000, 1),
			numeric("koi_slogg", "Stellar surface gravity", "log10(cm/s²)", 0, 6, 0.001),
			numeric("koi_srad", "Stellar radius", "Solar radii", 0, 100, 0.001),
			numeric("koi_kepmag", "Kepler-band magnitude", "mag", 0, 25, 0.001),
			flag("koi_fpflag_nt", "Not transit-like flag"),
			flag("koi_fpflag_ss", "Stellar eclipse flag"),
			flag("koi_fpflag_co", "Centroid offset flag"),
			flag("koi_fpflag_ec", "Ephemeris match flag"),
		},
		Physical: PhysicalFields{EqTemp: "koi_teq", Radius: "koi_prad", Depth: "koi_depth", DepthScale: 1, Duration: "koi_duration"},
	},
	K2: {
		MissionID: K2,
		Title:     "K2 Planets and Candidates",
		Features: []FeatureDescriptor{
			numeric("pl_orbper", "Orbital period", "days", 0, 1000, 0.001),
			numeric("pl_rade", "Planet radius", "Earth radii", 0, 300, 0.01),
			numeric("pl_eqt", "Equilibrium temperature", "K", 0, 5000, 1),
			numeric("pl_insol", "Insolation flux", "Earth flux", 0, 1e5, 0.01),
			numeric("pl_trandep", "Transit depth", "%", 0, 100, 0.001),
			numeric("pl_trandur", "Transit duration", "hours", 0, 100, 0.01),
			numeric("st_teff", "Stellar effective temperature", "K", 2000, 15000, 1),
			numeric("st_rad", "Stellar radius", "Solar radii", 0, 100, 0.001),
			numeric("st_logg", "Stellar surface gravity", "log10(cm/s²)", 0, 6, 0.001),
			numeric("sy_kmag", "Ks-band magnitude", "mag", 0, 25, 0.001),
			enumerated("disc_facility", "Discovery facility",
				Option{Value: "K2", Label: "K2"},
				Option{Value: "Kepler", Label: "Kepler"},
				Option{Value: "TESS", Label: "TESS"},
				Option{Value: "Ground", Label: "Ground-based"},
			),
		},
		// The archive reports K2 depth in percent.
		Physical: PhysicalFields{EqTemp: "pl_eqt", Radius: "pl_rade", Depth: "pl_trandep", DepthScale: 1e4, Duration: "pl_trandur"},
	},
	TESS: {
		MissionID: TESS,
		Title:     "TESS Objects of Interest",
		Features: []FeatureDescriptor{
			numeric("pl_orbper", "Orbital period", "days", 0, 1000, 0.0001),
			numeric("pl_trandurh", "Transit duration", "hours", 0, 100, 0.01),
			numeric("pl_trandep", "Transit depth", "ppm", 0, 1e6, 1),
			numeric("pl_rade", "Planet radius", "Earth radii", 0, 300, 0.01),
			numeric("pl_insol", "Insolation flux", "Earth flux", 0, 1e5, 0.01),
			numeric("pl_eqt", "Equilibrium temperature", "K", 0, 5000, 1),
			numeric("st_tmag", "TESS magnitude", "mag", 0, 25, 0.001),
			numeric("st_dist", "Stellar distance", "pc", 0, 10000, 0.01),
			numeric("st_teff", "Stellar effective temperature", "K", 2000, 15000, 1),
			numeric("st_logg", "Stellar surface gravity", "log10(cm/s²)", 0, 6, 0.001),
			numeric("st_rad", "Stellar radius", "Solar radii", 0, 100, 0.001),
		},
		Physical: PhysicalFields{EqTemp: "pl_eqt", Radius: "pl_rade", Depth: "pl_trandep", DepthScale: 1, Duration: "pl_trandurh"},
	},
}

// Illustrative labelled examples, one per mission. Kepler-62f style values for Kepler.
var samples = map[string]map[string]candidate.Value{
	Kepler: {
		"koi_period":    candidate.Number(129.9),
		"koi_time0bk":   candidate.Number(140.5),
		"koi_impact":    candidate.Number(0.15),
		"koi_duration":  candidate.Number(6.1),
		"koi_depth":     candidate.Number(580),
		"koi_prad":      candidate.Number(1.17),
		"koi_teq":       candidate.Number(188),
		"koi_insol":     candidate.Number(0.29),
		"koi_model_snr": candidate.Number(19.4),
		"koi_steff":     candidate.Number(3755),
		"koi_slogg":     candidate.Number(4.71),
		"koi_srad":      candidate.Number(0.47),
		"koi_kepmag":    candidate.Number(15.2),
		"koi_fpflag_nt": candidate.Text("0"),
		"koi_fpflag_ss": candidate.Text("0"),
		"koi_fpflag_co": candidate.Text("0"),
		"koi_fpflag_ec": candidate.Text("0"),
	},
	K2: {
		"pl_orbper":     candidate.Number(9.56),
		"pl_rade":       candidate.Number(2.23),
		"pl_eqt":        candidate.Number(750),
		"pl_insol":      candidate.Number(52.3),
		"pl_trandep":    candidate.Number(0.091),
		"pl_trandur":    candidate.Number(3.2),
		"st_teff":       candidate.Number(5450),
		"st_rad":        candidate.Number(0.86),
		"st_logg":       candidate.Number(4.5),
		"sy_kmag":       candidate.Number(10.3),
		"disc_facility": candidate.Text("K2"),
	},
	TESS: {
		"pl_orbper":   candidate.Number(37.42),
		"pl_trandurh": candidate.Number(4.8),
		"pl_trandep":  candidate.Number(1320),
		"pl_rade":     candidate.Number(3.1),
		"pl_insol":    candidate.Number(4.7),
		"pl_eqt":      candidate.Number(412),
		"st_tmag":     candidate.Number(9.8),
		"st_dist":     candidate.Number(86.2),
		"st_teff":     candidate.Number(4620),
		"st_logg":     candidate.Number(4.62),
		"st_rad":      candidate.Number(0.71),
	},
}

package models

// Record kinds known to the access-control registry. The kind string is
// also the resource_kind stored on grants, so changing one is a data
// migration.
const (
	KindProject   = "project"
	KindStudyArea = "study_area"
	KindCampaign  = "campaign"
	KindSite      = "site"
	KindTransect  = "transect"
	KindLocation  = "location"
	KindLayer     = "layer"
	KindSample    = "sample"
	KindReference = "reference"
	KindGrainSize = "grain_size_measurement"
)

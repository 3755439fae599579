package experts

// ImageStyle is a named rendering style for generated images.
type ImageStyle string

const (
	StyleNatural    ImageStyle = "Natural"
	StyleArtistic   ImageStyle = "Artistic"
	StyleTechnical  ImageStyle = "Technical"
	StyleMinimal    ImageStyle = "Minimal"
	StyleJobRelated ImageStyle = "Job related"
	StyleRealistic  ImageStyle = "Realistic"
)

var imageStyleDescriptions = map[ImageStyle]string{
	StyleNatural:    "Photorealistic and natural looking",
	StyleArtistic:   "Artistic and stylized",
	StyleTechnical:  "Technical diagrams and schematics",
	StyleMinimal:    "Clean and minimal design",
	StyleJobRelated: "Professional imagery related to specific job roles",
	StyleRealistic:  "Highly detailed and lifelike representation",
}

func (s ImageStyle) IsValid() bool {
	_, ok := imageStyleDescriptions[s]
	return ok
}

func (s ImageStyle) Description() string {
	return imageStyleDescriptions[s]
}

// ProviderStyle maps the catalog style to the provider's rendering mode. Only
// Natural maps to the provider's "natural" mode, everything else renders
// "vivid".
func (s ImageStyle) ProviderStyle() string {
	if s == StyleNatural {
		return "natural"
	}
	return "vivid"
}

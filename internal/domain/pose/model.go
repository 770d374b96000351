package pose

// Category groups poses by framing.
type Category string

const (
	CategoryPortrait Category = "portrait"
	CategoryFullBody Category = "full-body"
	CategorySitting  Category = "sitting"
	CategoryCreative Category = "creative"
	CategoryCustom   Category = "custom"
)

// Pose is a suggested pose the booth can guide a client through.
type Pose struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Category     Category `json:"category" yaml:"category"`
	ImageURL     string   `json:"imageUrl,omitempty" yaml:"imageUrl"`
	Instructions []string `json:"instructions,omitempty" yaml:"instructions"`
}

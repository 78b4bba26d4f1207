package initlib

// SeedConfig is the root struct for parsing the TOML seed file.
type SeedConfig struct {
	Categories []SeedCategory `toml:"category"`
	Shapes     []SeedShape    `toml:"shape"`
}

// SeedCategory represents a category entry in the TOML seed file.
type SeedCategory struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// SeedShape represents a shape entry in the TOML seed file. Seeded shapes
// are metadata-only: the preview lands later, through a capture or a repair
// pass that adopts a matching asset.
type SeedShape struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Category    string   `toml:"category"`
	Description string   `toml:"description"`
	Tags        []string `toml:"tags"`
	DeckSlide   *int     `toml:"deck_slide"`
}

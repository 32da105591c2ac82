package config

import "fmt"

// MessagesConfig picks the language used when Accept-Language names none of the supported ones.
type MessagesConfig struct {
	DefaultLanguage string `koanf:"defaultlanguage"`
}

func (c *MessagesConfig) String() string {
	return NewSection("Messages").Add("messages.defaultlanguage", c.DefaultLanguage).String()
}

func (c *MessagesConfig) Validate() error {
	switch c.DefaultLanguage {
	case "en", "ko":
		return nil
	default:
		return fmt.Errorf("unsupported messages default language %q", c.DefaultLanguage)
	}
}

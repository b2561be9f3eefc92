package translation

// Cache stores successful translations in memory for the length of a run
type Cache struct {
	translations map[string]string
}

// NewCache creates a new translation cache
func NewCache() *Cache {
	return &Cache{
		translations: make(map[string]string),
	}
}

// Add adds a translation to the cache
func (c *Cache) Add(text, translation string) {
	c.translations[text] = translation
}

// Get retrieves a translation from the cache
func (c *Cache) Get(text string) (string, bool) {
	translation, ok := c.translations[text]
	return translation, ok
}

// Len returns the number of cached translations
func (c *Cache) Len() int {
	return len(c.translations)
}

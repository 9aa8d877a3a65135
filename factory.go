package depot

type factory struct{}

var Factory factory

func (f factory) NewWorld(opts ...WorldOption) (*World, error) {
	return NewWorld(opts...)
}

// NewWorldFromFile loads a config file and builds a world with a logger
// configured from it.
func (f factory) NewWorldFromFile(path string) (*World, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	log, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return NewWorld(WithConfig(cfg), WithLogger(log))
}

func (f factory) NewArchetype(ids ...ComponentID) Archetype {
	return NewArchetype(ids...)
}

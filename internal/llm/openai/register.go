package openai

import "mockinterview/ai/internal/llm"

// Register adds the OpenAI-compatible provider to reg. A nil cfg is read from the environment.
func Register(reg *llm.Registry, cfg *Config) {
	reg.Register(providerName, func() (llm.Provider, error) {
		config := cfg
		if config == nil {
			var err error
			if config, err = NewConfig(); err != nil {
				return nil, err
			}
		}
		return NewClient(config)
	})
}

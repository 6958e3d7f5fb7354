// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML workspace configuration (.recall/config.toml)
//   - PromptStore: user-editable generation prompts (.recall/prompts/)
package file

// Package file keeps tabula's user-editable state under the config
// directory (~/.tabula by default): config.toml for settings and the
// startup document list, and prompts/*.txt for the LLM templates.
package file

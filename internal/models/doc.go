// Package models lists the OpenAI chat models that the configured key can
// use for translation.
package models

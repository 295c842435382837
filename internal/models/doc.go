// Package models lists the OpenAI chat models available to an API key so
// users can pick a value for --openai-model.
package models

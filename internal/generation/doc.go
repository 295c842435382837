// Package generation builds flashcard generation requests, sends them to
// a language model and interprets the answer. It owns the prompt contract
// (strict "question;answer" lines plus the invalid-input sentinel), the
// multimodal request payload and the error taxonomy surfaced to callers.
package generation

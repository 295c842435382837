// Package flashcard turns raw model output into question/answer pairs.
// It implements the strict line-based format used between the generation
// service and its callers, plus a lightweight key-concept extractor.
package flashcard

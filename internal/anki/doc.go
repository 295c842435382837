// Package anki exports decks for import into Anki, either as a plain CSV
// file or as an .apkg package with a Basic (Front/Back) note type.
package anki

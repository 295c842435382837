package anki

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
)

//go:embed collection.sql
var collectionSchema string

// schemaVersion is the col.ver understood by Anki 2.1 importers
const schemaVersion = 11

type deckEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Desc      string `json:"desc"`
	Mod       int64  `json:"mod"`
	Usn       int    `json:"usn"`
	Dyn       int    `json:"dyn"`
	Conf      int64  `json:"conf"`
	Collapsed bool   `json:"collapsed"`
	NewToday  [2]int `json:"newToday"`
	RevToday  [2]int `json:"revToday"`
	LrnToday  [2]int `json:"lrnToday"`
	TimeToday [2]int `json:"timeToday"`
}

type noteField struct {
	Name  string   `json:"name"`
	Ord   int      `json:"ord"`
	Font  string   `json:"font"`
	Size  int      `json:"size"`
	Media []string `json:"media"`
}

type cardTemplate struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
	QFmt string `json:"qfmt"`
	AFmt string `json:"afmt"`
}

type noteType struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Type      int            `json:"type"`
	Mod       int64          `json:"mod"`
	Usn       int            `json:"usn"`
	SortField int            `json:"sortf"`
	DeckID    int64          `json:"did"`
	Req       []any          `json:"req"`
	Fields    []noteField    `json:"flds"`
	Templates []cardTemplate `json:"tmpls"`
	CSS       string         `json:"css"`
	LatexPre  string         `json:"latexPre"`
	LatexPost string         `json:"latexPost"`
	Tags      []string       `json:"tags"`
	Vers      []int          `json:"vers"`
}

// deckOptions is the scheduling preset referenced by deckEntry.Conf
type deckOptions struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Mod      int64  `json:"mod"`
	Usn      int    `json:"usn"`
	Dyn      bool   `json:"dyn"`
	MaxTaken int    `json:"maxTaken"`
	New      struct {
		Delays        []float64 `json:"delays"`
		Ints          [3]int    `json:"ints"`
		InitialFactor int       `json:"initialFactor"`
		PerDay        int       `json:"perDay"`
		Order         int       `json:"order"`
	} `json:"new"`
	Lapse struct {
		Delays     []float64 `json:"delays"`
		Mult       float64   `json:"mult"`
		MinInt     int       `json:"minInt"`
		LeechFails int       `json:"leechFails"`
	} `json:"lapse"`
	Rev struct {
		PerDay int     `json:"perDay"`
		Ease4  float64 `json:"ease4"`
		MaxIvl int     `json:"maxIvl"`
		IvlFct float64 `json:"ivlFct"`
	} `json:"rev"`
}

func newDeckOptions(mod int64) deckOptions {
	opts := deckOptions{ID: 1, Name: "Default", Mod: mod, MaxTaken: 60}
	opts.New.Delays = []float64{1, 10}
	opts.New.Ints = [3]int{1, 4, 7}
	opts.New.InitialFactor = 2500
	opts.New.PerDay = 20
	opts.New.Order = 1
	opts.Lapse.Delays = []float64{10}
	opts.Lapse.MinInt = 1
	opts.Lapse.LeechFails = 8
	opts.Rev.PerDay = 100
	opts.Rev.Ease4 = 1.3
	opts.Rev.MaxIvl = 36500
	opts.Rev.IvlFct = 1
	return opts
}

// noteType returns the two-field note type every exported card uses
func (g *APKGGenerator) noteType(mod int64) noteType {
	return noteType{
		ID:        g.modelID,
		Name:      "Basic (callical)",
		Mod:       mod,
		Usn:       -1,
		DeckID:    g.deckID,
		Req:       []any{[]any{0, "all", []int{0}}},
		Fields:    []noteField{{Name: "Front", Ord: 0, Font: "Arial", Size: 20, Media: []string{}}, {Name: "Back", Ord: 1, Font: "Arial", Size: 20, Media: []string{}}},
		Templates: []cardTemplate{{Name: "Card 1", QFmt: `<div class="question">{{Front}}</div>`, AFmt: "{{FrontSide}}\n\n<hr id=\"answer\">\n\n<div class=\"answer\">{{Back}}</div>"}},
		CSS:       cardCSS,
		LatexPre:  "\\documentclass[12pt]{article}\n\\pagestyle{empty}\n\\begin{document}",
		LatexPost: "\\end{document}",
		Tags:      []string{},
		Vers:      []int{},
	}
}

// writeCollection creates the schema and the single col row
func (g *APKGGenerator) writeCollection(db *sql.DB) error {
	if _, err := db.Exec(collectionSchema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	now := g.now().Unix()
	deckKey := strconv.FormatInt(g.deckID, 10)
	modelKey := strconv.FormatInt(g.modelID, 10)

	fields := []any{
		map[string]any{
			"nextPos":     len(g.cards) + 1,
			"curDeck":     g.deckID,
			"activeDecks": []int64{g.deckID},
			"curModel":    modelKey,
			"schedVer":    1,
			"sortType":    "noteFld",
		},
		map[string]noteType{modelKey: g.noteType(now)},
		map[string]deckEntry{
			"1":     {ID: 1, Name: "Default", Mod: now, Conf: 1},
			deckKey: {ID: g.deckID, Name: g.deckName, Desc: "Flashcards exported from callical", Mod: now, Conf: 1},
		},
		map[string]deckOptions{"1": newDeckOptions(now)},
	}

	encoded := make([]any, 0, len(fields))
	for _, v := range fields {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode collection: %w", err)
		}
		encoded = append(encoded, string(data))
	}

	args := append([]any{1, now, now * 1000, now * 1000, schemaVersion, 0, 0, 0}, encoded...)
	args = append(args, "{}")

	_, err := db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	return err
}

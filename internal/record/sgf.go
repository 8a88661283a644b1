package record

import (
	"regexp"
	"strings"
)

// propRe matches one SGF property: an uppercase tag followed by its first
// bracketed value, e.g. PB[Takemiya Masaki]. Further values of a
// multi-valued property are not captured, and ParseSGF keeps only the first
// occurrence of a repeated header tag, which is sufficient for the header
// fields this parser cares about.
var propRe = regexp.MustCompile(`([A-Z]{1,2})\[([^\]]*)\]`)

var knownFields = map[string]bool{
	FieldBoardSize: true, FieldHandicap: true, FieldWhiteName: true,
	FieldWhiteRank: true, FieldBlackName: true, FieldBlackRank: true,
	FieldEvent: true, FieldRound: true, FieldDate: true, FieldPlace: true,
	FieldKomi: true, FieldResult: true,
}

// ParseSGF decodes a minimal subset of SGF text: the header properties
// named in knownFields, plus the ordered ;B[xx] / ;W[xx] move nodes. It
// does not implement variations, comments, or any property beyond the
// admitted field set; that is the full surface this system needs from a
// game-record file format.
func ParseSGF(text string) RawRecord {
	fields := make(map[string]string, len(knownFields))
	var moves []string

	for _, m := range propRe.FindAllStringSubmatch(text, -1) {
		tag, val := m[1], m[2]
		if tag == "B" || tag == "W" {
			move := strings.ToLower(strings.TrimSpace(val))
			if move == "" {
				move = "tt" // pass, recorded as empty in some sources
			}
			moves = append(moves, move)
			continue
		}
		if knownFields[tag] {
			if _, exists := fields[tag]; !exists {
				fields[tag] = val
			}
		}
	}

	return RawRecord{Fields: fields, Moves: moves}
}

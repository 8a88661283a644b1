package record

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bgoatlas/bgoatlas/internal/bgoerr"
)

// minMoves is the admission floor on recorded moves.
const minMoves = 30

// noEarlyPassWindow is how many leading moves may not contain a pass token.
const noEarlyPassWindow = 30

var moveTokenRe = regexp.MustCompile(`^[a-t][a-t]$`)

var dateFullRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
var dateYearMonthRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
var dateYearRe = regexp.MustCompile(`^(\d{4})$`)

// Admit validates and decodes one raw record per the admission rules,
// returning the first failing rule as a *bgoerr.RecordError.
func Admit(raw RawRecord) (Admitted, error) {
	white := strings.TrimSpace(raw.Fields[FieldWhiteName])
	black := strings.TrimSpace(raw.Fields[FieldBlackName])
	if white == "" || black == "" {
		return Admitted{}, bgoerr.NewRecordError(bgoerr.PhaseAdmission, "empty player name")
	}

	date, err := parseDate(raw.Fields[FieldDate])
	if err != nil {
		return Admitted{}, bgoerr.NewRecordError(bgoerr.PhaseAdmission, "undecodable date")
	}

	if isHandicap(raw.Fields[FieldHandicap]) {
		return Admitted{}, bgoerr.NewRecordError(bgoerr.PhaseAdmission, "handicap game")
	}

	if len(raw.Moves) < minMoves {
		return Admitted{}, bgoerr.NewRecordError(bgoerr.PhaseAdmission, "fewer than 30 moves")
	}

	if !boardSizeAdmitted(raw.Fields[FieldBoardSize], raw.Moves) {
		return Admitted{}, bgoerr.NewRecordError(bgoerr.PhaseAdmission, "board size not 19")
	}

	whiteRank := decodeRank(raw.Fields[FieldWhiteRank])
	blackRank := decodeRank(raw.Fields[FieldBlackRank])
	if whiteRank == kyuRejected || blackRank == kyuRejected {
		return Admitted{}, bgoerr.NewRecordError(bgoerr.PhaseAdmission, "kyu rank")
	}

	moves := make([]string, len(raw.Moves))
	for i, m := range raw.Moves {
		token := strings.ToLower(m)
		if !moveTokenRe.MatchString(token) {
			return Admitted{}, bgoerr.NewRecordError(bgoerr.PhaseAdmission, fmt.Sprintf("invalid move token %q", m))
		}
		if i < noEarlyPassWindow && token == "tt" {
			return Admitted{}, bgoerr.NewRecordError(bgoerr.PhaseAdmission, "early pass")
		}
		moves[i] = token
	}

	return Admitted{
		WhiteName: white,
		BlackName: black,
		WhiteRank: normalizeRank(whiteRank),
		BlackRank: normalizeRank(blackRank),
		Event:     raw.Fields[FieldEvent],
		Round:     raw.Fields[FieldRound],
		Place:     raw.Fields[FieldPlace],
		Komi:      raw.Fields[FieldKomi],
		Result:    raw.Fields[FieldResult],
		Date:      date,
		Winner:    decodeWinner(raw.Fields[FieldResult]),
		Moves:     moves,
	}, nil
}

func isHandicap(tag string) bool {
	tag = strings.TrimSpace(tag)
	return tag != "" && tag != "0"
}

func boardSizeAdmitted(tag string, moves []string) bool {
	tag = strings.TrimSpace(tag)
	if tag != "" {
		return tag == "19"
	}
	for _, m := range moves {
		token := strings.ToLower(m)
		if len(token) != 2 {
			continue
		}
		if token[0] > 'm' || token[1] > 'm' {
			return false
		}
	}
	return true
}

func parseDate(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if m := dateFullRe.FindStringSubmatch(tag); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), nil
	}
	if m := dateYearMonthRe.FindStringSubmatch(tag); m != nil {
		return fmt.Sprintf("%s-%s-01", m[1], m[2]), nil
	}
	if m := dateYearRe.FindStringSubmatch(tag); m != nil {
		return fmt.Sprintf("%s-01-01", m[1]), nil
	}
	return "", fmt.Errorf("undecodable date %q", tag)
}

// kyuRejected is a sentinel rank value meaning "decodable and kyu" — the
// caller must reject the record rather than store this value.
const kyuRejected = -1 << 30

// decodeRank walks the rank string to the first alphabetic character and
// interprets the numeric prefix per the admission rules. Undecodable or
// honorary ranks decode to 0 (unranked, admitted); decodable kyu ranks
// return kyuRejected so the caller can reject the record.
func decodeRank(tag string) int {
	tag = strings.TrimSpace(tag)
	idx := -1
	for i := 0; i < len(tag); i++ {
		if (tag[i] >= 'a' && tag[i] <= 'z') || (tag[i] >= 'A' && tag[i] <= 'Z') {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return 0
	}
	n, err := strconv.Atoi(tag[:idx])
	if err != nil {
		return 0
	}
	letter := tag[idx]
	if letter >= 'A' && letter <= 'Z' {
		letter += 'a' - 'A'
	}
	switch letter {
	case 'd', 'p':
		if n >= 1 && n <= 10 {
			return n
		}
		return 0
	case 'k':
		if n >= 1 && n <= 30 {
			return kyuRejected
		}
		return 0
	default:
		return 0
	}
}

// normalizeRank converts a decodeRank dan/pro result to the stored
// convention (positive dan/pro, negative kyu magnitude, 0 unranked). Kyu
// ranks never reach here: Admit rejects them first.
func normalizeRank(n int) int {
	return n
}

func decodeWinner(result string) Winner {
	result = strings.TrimSpace(result)
	if result == "" {
		return WinnerNone
	}
	switch result[0] {
	case 'b', 'B':
		return WinnerBlack
	case 'w', 'W':
		return WinnerWhite
	default:
		return WinnerNone
	}
}

package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/survey-cli/internal/model"
)

// ErrQuestionColumnUnresolved means the mandatory question column could not
// be matched against the row-accurate headers; the sheet is skipped.
var ErrQuestionColumnUnresolved = eris.New("pipeline: question column unresolved")

// placeholderPattern matches the synthetic names both readers emit for
// blank headers. "Unnamed: N" is zero-based; "Column_N" is one-based.
var placeholderPattern = regexp.MustCompile(`^(?:Unnamed: (\d+)|Column_(\d+))$`)

// columnNamePunct is the punctuation stripped during normalized matching.
const columnNamePunct = "&@#$%^*()+=[]{}<>|\\/:;'\"~`,"

// NormalizeColumnName lowercases a header, strips punctuation, and collapses
// internal whitespace. Pure function; the fuzzy tier of column resolution
// compares these normalized forms.
func NormalizeColumnName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(columnNamePunct, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(strings.ToLower(b.String())), " ")
}

// placeholderIndex decodes a synthetic placeholder header into a zero-based
// column index.
func placeholderIndex(name string) (int, bool) {
	m := placeholderPattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, false
	}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// ResolveColumns maps structure-analysis column names onto the row-accurate
// header list. Per role, first match wins: exact header text, then a
// positional placeholder, then normalized fuzzy comparison. Unmatched roles
// are dropped with a warning; an unmatched question column fails the sheet.
//
// Two readers of the same file legitimately disagree on header text, so
// this is deliberately lenient.
func ResolveColumns(sheetName string, roles model.ColumnRoles, headers []string) (model.ResolvedColumns, error) {
	resolved := model.ResolvedColumns{
		Indices:      make(map[model.ColumnRole]int),
		DisplayNames: make(map[model.ColumnRole]string),
	}

	normalized := make(map[string]int, len(headers))
	for i := len(headers) - 1; i >= 0; i-- {
		// Earlier columns win on normalized collisions.
		if n := NormalizeColumnName(headers[i]); n != "" {
			normalized[n] = i
		}
	}

	for _, role := range model.ColumnRoleOrder {
		name, ok := roles[role]
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}

		idx, matched := matchColumn(name, headers, normalized)
		if !matched {
			if role == model.RoleQuestion {
				return resolved, ErrQuestionColumnUnresolved
			}
			zap.L().Warn("pipeline: column unresolved, dropping role",
				zap.String("sheet", sheetName),
				zap.String("role", string(role)),
				zap.String("column", name),
			)
			continue
		}

		resolved.Indices[role] = idx
		resolved.DisplayNames[role] = headers[idx]
	}

	return resolved, nil
}

func matchColumn(name string, headers []string, normalized map[string]int) (int, bool) {
	for i, h := range headers {
		if h == name {
			return i, true
		}
	}

	if idx, ok := placeholderIndex(name); ok && idx < len(headers) {
		return idx, true
	}

	if idx, ok := normalized[NormalizeColumnName(name)]; ok {
		return idx, true
	}

	return 0, false
}

// renderColumns returns the resolved display names and indices in role
// order with duplicate indices removed, for table rendering.
func renderColumns(rc model.ResolvedColumns) (headers []string, indices []int) {
	seen := make(map[int]bool)
	for _, role := range model.ColumnRoleOrder {
		idx, ok := rc.Indices[role]
		if !ok || seen[idx] {
			continue
		}
		seen[idx] = true
		headers = append(headers, rc.DisplayNames[role])
		indices = append(indices, idx)
	}
	return headers, indices
}

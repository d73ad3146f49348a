package lexical

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/planbureau/planproof/internal/corpus"
	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/issue"
)

// landCodeRe captures a land-use classification code optionally followed by
// the classification name it claims to denote.
var landCodeRe = regexp.MustCompile(`([A-Z]\d{0,2})\s*类?\s*([\p{Han}]{1,12}用地)?`)

// checkLandUseCodes validates land-use classification codes against the
// corpus table. A code only counts as a land-use reference when the match
// itself or its immediate surroundings mention 用地/绿地, which keeps
// arbitrary capital letters (road names, building numbers) out.
//
// Unknown codes are errors; a known code paired with a name that contradicts
// the table is a warning, since local standards legitimately rename some
// classes.
func checkLandUseCodes(doc *docmodel.Document, c *corpus.Corpus) []issue.Issue {
	if len(c.LandUse) == 0 {
		return nil
	}
	var issues []issue.Issue
	for _, u := range textUnits(doc) {
		for _, m := range landCodeRe.FindAllStringSubmatchIndex(u.text, -1) {
			code := u.text[m[2]:m[3]]
			name := ""
			if m[4] >= 0 {
				name = u.text[m[4]:m[5]]
			}
			if name == "" && !nearLandUseVocabulary(u.text, m[0], m[1]) {
				continue
			}

			tableName, known := c.LandUseName(code)
			if !known {
				msg := fmt.Sprintf("[用地代码] 「%s」不在用地分类代码表中，请核对代码是否有误", code)
				issues = append(issues, located(u.index, issue.SeverityError, issue.CategoryLandCode, msg,
					strings.TrimSpace(u.text[m[0]:m[1]])))
				continue
			}
			if name != "" && name != tableName && !strings.HasSuffix(tableName, name) {
				msg := fmt.Sprintf("[用地代码] 「%s」对应的分类名称应为「%s」，文中写作「%s」，请核对",
					code, tableName, name)
				issues = append(issues, located(u.index, issue.SeverityWarning, issue.CategoryLandCode, msg,
					code+name))
			}
		}
	}
	return issues
}

// nearLandUseVocabulary reports whether the ±12 runes around the byte span
// [start,end) mention land-use vocabulary.
func nearLandUseVocabulary(text string, start, end int) bool {
	before := []rune(text[:start])
	if len(before) > 12 {
		before = before[len(before)-12:]
	}
	after := []rune(text[end:])
	if len(after) > 12 {
		after = after[:12]
	}
	window := string(before) + string(after)
	return strings.Contains(window, "用地") || strings.Contains(window, "绿地") ||
		strings.Contains(window, "用地性质") || strings.Contains(window, "地块")
}

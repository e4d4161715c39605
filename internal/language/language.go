package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
)

type entry struct {
	code2 string   // ISO 639-1
	alt3  string   // ISO 639-2/B where it differs from 639-2/T
	words []string // English names as Archive.org writes them
}

// aliases covers what x/text does not parse: bibliographic codes and names.
var aliases = []entry{
	{"en", "", []string{"english"}},
	{"es", "", []string{"spanish", "castilian"}},
	{"fr", "fre", []string{"french"}},
	{"de", "ger", []string{"german"}},
	{"it", "", []string{"italian"}},
	{"pt", "", []string{"portuguese"}},
	{"ja", "", []string{"japanese"}},
	{"ko", "", []string{"korean"}},
	{"zh", "chi", []string{"chinese", "mandarin", "cantonese"}},
	{"ru", "", []string{"russian"}},
	{"ar", "", []string{"arabic"}},
	{"hi", "", []string{"hindi"}},
	{"nl", "dut", []string{"dutch", "flemish"}},
	{"pl", "", []string{"polish"}},
	{"sv", "", []string{"swedish"}},
	{"da", "", []string{"danish"}},
	{"no", "", []string{"norwegian"}},
	{"fi", "", []string{"finnish"}},
	{"cs", "cze", []string{"czech"}},
	{"el", "gre", []string{"greek"}},
	{"hu", "", []string{"hungarian"}},
	{"yi", "", []string{"yiddish"}},
	{"xx", "zxx", []string{"silent", "no linguistic content"}},
}

var byAlias map[string]string

func init() {
	byAlias = make(map[string]string, len(aliases)*3)
	for _, e := range aliases {
		byAlias[e.code2] = e.code2
		if e.alt3 != "" {
			byAlias[e.alt3] = e.code2
		}
		for _, w := range e.words {
			byAlias[w] = e.code2
		}
	}
}

// ToISO2 converts a recognized code or English name to ISO 639-1. Silent
// films map to "xx". Unrecognized input yields "".
func ToISO2(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if code, ok := byAlias[value]; ok {
		return code
	}
	if len(value) != 2 && len(value) != 3 {
		return ""
	}
	base, err := xlanguage.ParseBase(value)
	if err != nil {
		return ""
	}
	code := base.String()
	if len(code) != 2 {
		return ""
	}
	return code
}

// NormalizeList maps values to ISO 639-1 codes, keeping first-seen order and
// dropping duplicates and anything unrecognized. A value may itself hold
// several languages separated by commas, semicolons or slashes.
func NormalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		for _, part := range strings.FieldsFunc(value, isSeparator) {
			code := ToISO2(part)
			if code == "" {
				continue
			}
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	return out
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || r == '/' || r == '|'
}

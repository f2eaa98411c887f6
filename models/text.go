package models

import "regexp"

// Keywords match case-insensitively; fields are captured loosely and then
// validated so a bad field reports which rule it broke.
var (
	authPattern  = regexp.MustCompile(`^(?i:AUTH) (\S+) (?i:AS) (\S+) (?i:USING) (\S+)$`)
	joinPattern  = regexp.MustCompile(`^(?i:JOIN) (\S+) (?i:AS) (\S+)$`)
	msgPattern   = regexp.MustCompile(`^(?i:MSG) (?i:FROM) (\S+) (?i:IS) (.+)$`)
	errPattern   = regexp.MustCompile(`^(?i:ERR) (?i:FROM) (\S+) (?i:IS) (.+)$`)
	replyPattern = regexp.MustCompile(`^(?i:REPLY) ((?i:OK|NOK)) (?i:IS) (.+)$`)
	byePattern   = regexp.MustCompile(`^(?i:BYE)$`)
)

func matchLine(t Type, pattern *regexp.Regexp, text []byte) ([]string, error) {
	groups := pattern.FindSubmatch(trimTerminator(text))
	if groups == nil {
		return nil, formatErrorf(t, "line does not match %s grammar", t)
	}

	fields := make([]string, len(groups)-1)
	for i, g := range groups[1:] {
		fields[i] = string(g)
	}

	return fields, nil
}

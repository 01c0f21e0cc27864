package client

import (
	"strings"
	"unicode"
)

// HumanizeSkill spaces out a camel-cased math skill: "AdditionWithCarry" => "Addition With Carry".
func HumanizeSkill(skill string) string {
	var b strings.Builder
	b.Grow(len(skill) + 4)
	for i, r := range skill {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

package view

import (
	"strconv"

	"github.com/slamweb/slam/internal/domain/sportfield"
)

//go:generate templ generate

func inputName(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func trackPrefix(index int) string {
	return "tracks." + strconv.Itoa(index)
}

func inputType(k sportfield.FieldKind) string {
	if k == sportfield.KindNumber {
		return "number"
	}
	return "text"
}

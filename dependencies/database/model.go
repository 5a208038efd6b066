package database

import (
	"fmt"
	"strings"
	"time"
)

// E element the kv value
type E struct {
	Key   string
	Value any
}

// D the documents
type D []E

// CE the condition elements
type CE struct {
	Key   string
	Value any
	C     Condition
}

// C the conditions
type C []CE

// String print the condition as string
func (c C) String() (result string) {
	for _, v := range c {
		result += fmt.Sprintf("[%s %v %v]", v.Key, v.C, v.Value)
	}
	return
}

// Condition the condition
type Condition uint8

// Condition
const (
	// Eq =
	Eq Condition = iota
	// Ne !=
	Ne
	// Lt <
	Lt
	// Lte <=
	Lte
	// Gt >
	Gt
	// Gte >=
	Gte
	// In [a,b,c]
	In
	// Nin Not in [a,b,c]
	Nin
)

var conditionNames = [...]string{"=", "!=", "<", "<=", ">", ">=", "in", "nin"}

func (c Condition) String() string {
	if int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return fmt.Sprintf("Condition(%d)", uint8(c))
}

// Index the index declared on a table.
type Index struct {
	// Field one or more comma separated fields.
	Field        string
	ReverseOrder bool
	Unique       bool
	Expires      time.Duration
}

// Fields splits Field on commas.
func (i *Index) Fields() []string {
	return strings.Split(i.Field, ",")
}

// Name the index name, built from its fields: "_a_b".
func (i *Index) Name() string {
	var name string
	for _, f := range i.Fields() {
		name += "_" + f
	}
	return name
}

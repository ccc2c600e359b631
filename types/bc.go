package types

import (
	"fmt"
	"strings"
)

// BCKind is the kind of a boundary condition
type BCKind uint8

const (
	BC_None   BCKind = iota
	BC_First         // fixed value
	BC_Second        // prescribed flux
	BC_Third         // flux proportional to the value, coefficient beta
)

func (bk BCKind) String() string {
	switch bk {
	case BC_First:
		return "First"
	case BC_Second:
		return "Second"
	case BC_Third:
		return "Third"
	}
	return "None"
}

// BCNameMap keys are lowercase for case-insensitive matching
var BCNameMap = map[string]BCKind{
	"first":     BC_First,
	"dirichlet": BC_First,
	"fixed":     BC_First,
	"1":         BC_First,
	"second":    BC_Second,
	"neumann":   BC_Second,
	"neuman":    BC_Second,
	"flux":      BC_Second,
	"2":         BC_Second,
	"third":     BC_Third,
	"robin":     BC_Third,
	"mixed":     BC_Third,
	"3":         BC_Third,
}

func ParseBCKind(name string) (bk BCKind, err error) {
	var ok bool
	if bk, ok = BCNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown boundary condition kind [%s]", name)
	}
	return
}

/*
BCTAG is a boundary marker name of the form "<kind>-<label>", e.g. "Dirichlet-left" or "Robin-2".
A marker without a dash carries only the kind.
*/
type BCTAG string

func NewBCTAG(label string) BCTAG {
	return BCTAG(strings.TrimSpace(label))
}

func (bt BCTAG) split() (kind, label string) {
	s := string(bt)
	if ind := strings.Index(s, "-"); ind >= 0 {
		return s[:ind], s[ind+1:]
	}
	return s, ""
}

func (bt BCTAG) GetKind() BCKind {
	kind, _ := bt.split()
	bk, _ := ParseBCKind(kind)
	return bk
}

func (bt BCTAG) GetLabel() string {
	_, label := bt.split()
	return label
}

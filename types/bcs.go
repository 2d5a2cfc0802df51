package types

import "strings"

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_In
	BC_Wall
	BC_Out
)

var BCNameMap = map[string]BCFLAG{
	"inflow":  BC_In,
	"inlet":   BC_In,
	"in":      BC_In,
	"wall":    BC_Wall,
	"walls":   BC_Wall,
	"noslip":  BC_Wall,
	"out":     BC_Out,
	"outflow": BC_Out,
	"outlet":  BC_Out,
}

func NewBCFLAG(label string) (bf BCFLAG) {
	var (
		ok bool
	)
	if bf, ok = BCNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		return BC_None
	}
	return
}

func (bf BCFLAG) String() string {
	switch bf {
	case BC_In:
		return "Inflow"
	case BC_Wall:
		return "Wall"
	case BC_Out:
		return "Outflow"
	}
	return "None"
}

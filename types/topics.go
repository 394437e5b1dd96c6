package types

// Topic tokens shared by services and host tools.
const (
	TokConfig  = "config"
	TokColor   = "color"
	TokState   = "state"
	TokSet     = "set"
	TokGesture = "gesture"
	TokStore   = "store"
	TokEvent   = "event"
	TokStats   = "stats"
	TokGet     = "get"
)

// Config sections published retained under config/<section>.
const (
	SectionDevice  = "device"
	SectionGesture = "gesture"
	SectionColor   = "color"
	SectionStore   = "store"
	SectionRefresh = "refresh"
)

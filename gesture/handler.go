package gesture

// Capability interfaces. A handler passed to New may implement any subset;
// gestures without a matching method are dropped.
type (
	SingleClicker interface{ SingleClick() }
	DoubleClicker interface{ DoubleClick() }
	LongPresser   interface{ LongPress() }
)

// HandlerFuncs adapts plain functions; nil fields are skipped.
type HandlerFuncs struct {
	OnSingleClick func()
	OnDoubleClick func()
	OnLongPress   func()
}

func (h HandlerFuncs) SingleClick() {
	if h.OnSingleClick != nil {
		h.OnSingleClick()
	}
}

func (h HandlerFuncs) DoubleClick() {
	if h.OnDoubleClick != nil {
		h.OnDoubleClick()
	}
}

func (h HandlerFuncs) LongPress() {
	if h.OnLongPress != nil {
		h.OnLongPress()
	}
}

// slots is resolved once at construction so dispatch never type-asserts.
type slots struct {
	single func()
	double func()
	long   func()
}

func resolve(h any) slots {
	var s slots
	if x, ok := h.(SingleClicker); ok {
		s.single = x.SingleClick
	}
	if x, ok := h.(DoubleClicker); ok {
		s.double = x.DoubleClick
	}
	if x, ok := h.(LongPresser); ok {
		s.long = x.LongPress
	}
	return s
}

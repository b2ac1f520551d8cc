package scroll

import "testing"

// fakeView is an in-memory viewport. SetScrollY always lands; user scrolling
// is modeled by the test writing scrollY directly.
type fakeView struct {
	scrollY  float64
	docH     float64
	vpH      float64
	enabled  bool
	setCalls int

	// ignoreWrites models a host that silently drops programmatic scrolls.
	ignoreWrites bool
}

func newFakeView() *fakeView {
	return &fakeView{docH: 6000, vpH: 900, enabled: true}
}

func (v *fakeView) ScrollY() float64        { return v.scrollY }
func (v *fakeView) DocumentHeight() float64 { return v.docH }
func (v *fakeView) ViewportHeight() float64 { return v.vpH }

func (v *fakeView) SetScrollY(y float64) {
	v.setCalls++
	if !v.ignoreWrites {
		v.scrollY = y
	}
}

func (v *fakeView) SetScrollEnabled(enabled bool) { v.enabled = enabled }

type recordingListener struct {
	states []State
}

func (l *recordingListener) OnScroll(st State) {
	l.states = append(l.states, st)
}

func TestSampleProgress(t *testing.T) {
	tests := []struct {
		name    string
		scrollY float64
		docH    float64
		vpH     float64
		want    float64
	}{
		{"top", 0, 6000, 900, 0},
		{"middle", 2550, 6000, 900, 0.5},
		{"bottom", 5100, 6000, 900, 1},
		{"past bottom", 9000, 6000, 900, 1},
		{"negative", -100, 6000, 900, 0},
		{"content fits viewport", 0, 800, 900, 0},
		{"equal heights", 0, 900, 900, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := &fakeView{scrollY: tt.scrollY, docH: tt.docH, vpH: tt.vpH}
			s := NewSampler(view)
			if got := s.Sample().Progress; got != tt.want {
				t.Errorf("Progress = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestTickDispatchOrder(t *testing.T) {
	view := newFakeView()
	s := NewSampler(view)

	var order []string
	first := listenerFunc(func(st State) { order = append(order, "first") })
	second := listenerFunc(func(st State) { order = append(order, "second") })
	s.Subscribe(first, second)

	view.scrollY = 2550
	st := s.Tick()

	if st.Progress != 0.5 {
		t.Errorf("Progress = %f, want 0.5", st.Progress)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("dispatch order = %v", order)
	}
}

type listenerFunc func(State)

func (f listenerFunc) OnScroll(st State) { f(st) }

func TestSuspendBlocksDispatchNotSampling(t *testing.T) {
	view := newFakeView()
	s := NewSampler(view)
	rec := &recordingListener{}
	s.Subscribe(rec)

	s.Suspend(true)
	view.scrollY = 2550
	st := s.Tick()

	if st.Progress != 0.5 {
		t.Errorf("suspended tick still samples: got %f", st.Progress)
	}
	if len(rec.states) != 0 {
		t.Errorf("suspended tick dispatched %d states", len(rec.states))
	}
	if s.Last().Progress != 0.5 {
		t.Errorf("Last = %f, want 0.5", s.Last().Progress)
	}

	s.Suspend(false)
	s.Tick()
	if len(rec.states) != 1 {
		t.Fatalf("expected 1 dispatch after resume, got %d", len(rec.states))
	}
}

func TestLoopingFlagOnState(t *testing.T) {
	view := newFakeView()
	s := NewSampler(view)

	if s.Sample().IsLooping {
		t.Error("fresh sampler reports looping")
	}

	s.SetLooping(true)
	if !s.Sample().IsLooping {
		t.Error("IsLooping not set")
	}

	s.SetLooping(false)
	if s.Sample().IsLooping {
		t.Error("IsLooping stuck")
	}
}

func TestFreezePinsGeometry(t *testing.T) {
	view := newFakeView()
	s := NewSampler(view)

	view.scrollY = 2550
	s.Freeze()

	// A reflow doubles the document height; frozen progress ignores it.
	view.docH = 12000
	if got := s.Sample().Progress; got != 0.5 {
		t.Errorf("frozen Progress = %f, want 0.5", got)
	}

	s.Unfreeze()
	if got := s.Sample().Progress; got >= 0.5 {
		t.Errorf("unfrozen Progress = %f, want < 0.5", got)
	}
}

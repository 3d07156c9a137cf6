package screen

// CardScreen shows a few lines of text. It finishes on ENTER, SPACE or a
// click, or by itself after Duration seconds when Duration is positive.
type CardScreen struct {
	Heading  string
	Lines    []string
	Duration float64

	elapsed float64
	finish  int
}

// Init restarts the timer
func (s *CardScreen) Init() {
	s.elapsed = 0
	s.finish = Continue
}

// Update advances the timer and watches for a dismiss
func (s *CardScreen) Update(dt float64, in Input) {
	s.elapsed += dt
	if s.Duration > 0 && s.elapsed >= s.Duration {
		s.finish = Done
	}
	if in.KeyPressed(KeyEnter) || in.KeyPressed(KeySpace) {
		s.finish = Done
	}
	if _, _, ok := in.Click(); ok {
		s.finish = Done
	}
}

func (s *CardScreen) Unload() {}

func (s *CardScreen) Finish() int {
	return s.finish
}

// Elapsed returns how long the card has been shown
func (s *CardScreen) Elapsed() float64 {
	return s.elapsed
}

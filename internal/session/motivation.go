package session

var motivationLines = [...]string{
	"Keep going!",
	"You got this!",
	"Strong reps!",
	"Great pace!",
	"Stay consistent!",
	"Focus and breathe.",
}

// Motivation picks an encouragement line that changes once per second of
// frame time.
func Motivation(ts float64) string {
	i := int(ts) % len(motivationLines)
	if i < 0 {
		i += len(motivationLines)
	}
	return motivationLines[i]
}

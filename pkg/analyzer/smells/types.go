package smells

// Thresholds configures the size and complexity limits of the smell rules.
type Thresholds struct {
	LongMethod      int `json:"long_method"`      // Lines above which a method is long
	VeryLongMethod  int `json:"very_long_method"` // Lines above which a method is very long
	LargeFile       int `json:"large_file"`       // Lines above which a file is large
	GodClass        int `json:"god_class"`        // Lines above which a file is a god class
	ComplexFunction int `json:"complex_function"` // Branch count above which a script function is complex
	HighComplexity  int `json:"high_complexity"`  // Branch count above which the smell is high severity
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LongMethod:      30,
		VeryLongMethod:  50,
		LargeFile:       300,
		GodClass:        500,
		ComplexFunction: 10,
		HighComplexity:  15,
	}
}

func (t Thresholds) valid() bool {
	return t.LongMethod > 0 && t.VeryLongMethod > t.LongMethod &&
		t.LargeFile > 0 && t.GodClass > t.LargeFile &&
		t.ComplexFunction > 0 && t.HighComplexity >= t.ComplexFunction
}

// Levels by smell score.
const (
	LevelExcellent  = "Excellent"
	LevelGood       = "Good"
	LevelAcceptable = "Acceptable"
	LevelNeedsWork  = "Needs work"
)

// Level maps a smell score to a label.
func Level(score int) string {
	switch {
	case score >= 85:
		return LevelExcellent
	case score >= 70:
		return LevelGood
	case score >= 55:
		return LevelAcceptable
	default:
		return LevelNeedsWork
	}
}

// ComplexFunction is a script function whose body branches too often.
type ComplexFunction struct {
	Name       string
	Complexity int
}

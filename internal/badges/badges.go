package badges

// Snapshot is the aggregate view badge predicates are checked against.
type Snapshot struct {
	TotalSolved   int
	CurrentStreak int
	MaxStreak     int
	Contests      int
	Languages     int
}

// Rule is one milestone definition: a unique badge name plus the
// predicate that unlocks it.
type Rule struct {
	Name  string
	Match func(Snapshot) bool
}

// Evaluator holds the fixed, ordered milestone table.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator creates an evaluator from an explicit rule table
func NewEvaluator(rules []Rule) *Evaluator {
	return &Evaluator{rules: rules}
}

// Default returns the built-in milestone table.
func Default() *Evaluator {
	return NewEvaluator([]Rule{
		{Name: "First Blood", Match: func(s Snapshot) bool { return s.TotalSolved >= 1 }},
		{Name: "Problem Solver", Match: func(s Snapshot) bool { return s.TotalSolved >= 10 }},
		{Name: "Half Century", Match: func(s Snapshot) bool { return s.TotalSolved >= 50 }},
		{Name: "Centurion", Match: func(s Snapshot) bool { return s.TotalSolved >= 100 }},
		{Name: "Week Warrior", Match: func(s Snapshot) bool { return s.MaxStreak >= 7 }},
		{Name: "Monthly Master", Match: func(s Snapshot) bool { return s.MaxStreak >= 30 }},
		{Name: "Contender", Match: func(s Snapshot) bool { return s.Contests >= 1 }},
		{Name: "Competitor", Match: func(s Snapshot) bool { return s.Contests >= 5 }},
		{Name: "Polyglot", Match: func(s Snapshot) bool { return s.Languages >= 3 }},
	})
}

// Evaluate returns the names of badges whose predicate holds and which
// the user does not already have, in table order. Grants are idempotent
// by name: re-evaluating an unchanged snapshot yields nothing new.
func (e *Evaluator) Evaluate(snap Snapshot, has func(name string) bool) []string {
	var granted []string
	for _, rule := range e.rules {
		if has(rule.Name) {
			continue
		}
		if rule.Match(snap) {
			granted = append(granted, rule.Name)
		}
	}
	return granted
}

// Len returns the number of rules in the table
func (e *Evaluator) Len() int {
	return len(e.rules)
}

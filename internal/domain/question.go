package domain

// Question is one fixed prompt of the questionnaire.
type Question struct {
	Section string `json:"section"`
	Number  int    `json:"number"`
	Text    string `json:"text"`
	Hint    string `json:"hint"`
	Timer   string `json:"timer,omitempty"`
}

// QuestionCount is the length of the fixed question sequence.
const QuestionCount = 40

// Questions returns a copy of the fixed question sequence.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

var questions = []Question{
	// Part 1: the soul of the product
	{Section: "The Soul of the Product", Number: 1, Text: "The One-Liner", Hint: "In 10 words or less, what does this thing DO?", Timer: "30 seconds - no overthinking"},
	{Section: "The Soul of the Product", Number: 2, Text: "The Emotional Hook", Hint: "What feeling should users have in the first 10 seconds of interaction?"},
	{Section: "The Soul of the Product", Number: 3, Text: "The 'Holy Shit' Moment", Hint: "What's the ONE feature that makes someone text their friend about this?"},
	{Section: "The Soul of the Product", Number: 4, Text: "The Non-Negotiable", Hint: "What's the single quality that, if compromised, kills the entire product?"},
	{Section: "The Beautiful Constraint", Number: 5, Text: "Primary Interface", Hint: "What's the MAIN way users interact? (touch/voice/gesture/CLI/web/physical)"},
	{Section: "The Beautiful Constraint", Number: 6, Text: "The 80% Use Case", Hint: "What will 80% of users do 80% of the time?"},
	{Section: "The Beautiful Constraint", Number: 7, Text: "The Deletion Test", Hint: "If you could only ship THREE features, which three?"},
	{Section: "The Beautiful Constraint", Number: 8, Text: "The Grandma Test", Hint: "Can you explain this to a grandma in one sentence? (If no, simplify)"},

	// Part 2: the experience architecture
	{Section: "User Journey Crystallization", Number: 9, Text: "First Touch", Hint: "Describe the EXACT first 60 seconds of user experience (every tap, every screen)"},
	{Section: "User Journey Crystallization", Number: 10, Text: "The Learning Cliff", Hint: "What does the user need to know BEFORE they start? (aim for: nothing)"},
	{Section: "User Journey Crystallization", Number: 11, Text: "The Payoff Timeline", Hint: "How long until they get value? (Target: <2 minutes)"},
	{Section: "User Journey Crystallization", Number: 12, Text: "The Daily Ritual", Hint: "Why would someone use this tomorrow? And next week?"},
	{Section: "Technical Beauty Standards", Number: 13, Text: "Response Religion", Hint: "Maximum acceptable latency for primary action? (OP-1: instant, Tesla: <100ms)"},
	{Section: "Technical Beauty Standards", Number: 14, Text: "Failure Grace", Hint: "When things break, what's the user experience? (Don't say 'it won't break')"},
	{Section: "Technical Beauty Standards", Number: 15, Text: "The Ambient State", Hint: "What does it look/do when nobody's using it?"},
	{Section: "Technical Beauty Standards", Number: 16, Text: "Physical Presence", Hint: "Any physical indicators/feedback? (LEDs, sounds, haptics, display)"},

	// Part 3: the build specification
	{Section: "System Architecture Lightning Round", Number: 17, Text: "Hardware Stack", Hint: "List every physical component needed (be exhaustive)"},
	{Section: "System Architecture Lightning Round", Number: 18, Text: "Software Services", Hint: "List every daemon/service/process that must run"},
	{Section: "System Architecture Lightning Round", Number: 19, Text: "Network Topology", Hint: "Draw the network in words (who talks to what, how)"},
	{Section: "System Architecture Lightning Round", Number: 20, Text: "Data Flows", Hint: "What information moves where? (user input → processing → output)"},
	{Section: "State & Persistence", Number: 21, Text: "State Management", Hint: "What needs to be remembered between sessions?"},
	{Section: "State & Persistence", Number: 22, Text: "Reset Behavior", Hint: "What happens after power cycle?"},
	{Section: "State & Persistence", Number: 23, Text: "Multi-User Reality", Hint: "Can multiple people use simultaneously? How?"},
	{Section: "State & Persistence", Number: 24, Text: "Progress Indicators", Hint: "How does the system show what's happening? (visual/audio/network)"},

	// Part 4: the implementation accelerators
	{Section: "Concrete Deliverables", Number: 25, Text: "File System Layout", Hint: "Where does everything live? (/etc/, /var/, /opt/, etc.)"},
	{Section: "Concrete Deliverables", Number: 26, Text: "Configuration Baseline", Hint: "List every config file and its primary purpose"},
	{Section: "Concrete Deliverables", Number: 27, Text: "Security Posture", Hint: "Default passwords? Open ports? Intentional vulnerabilities?"},
	{Section: "Concrete Deliverables", Number: 28, Text: "Testing Victory", Hint: "How do you know it works? (specific, measurable outcomes)"},
	{Section: "Automation Prerequisites", Number: 29, Text: "Environment Variables", Hint: "What must be configurable?"},
	{Section: "Automation Prerequisites", Number: 30, Text: "Bootstrap Sequence", Hint: "Order of operations from blank Pi to working product?"},
	{Section: "Automation Prerequisites", Number: 31, Text: "Dependency Chain", Hint: "What must exist before what? (network before services, etc.)"},
	{Section: "Automation Prerequisites", Number: 32, Text: "Health Checks", Hint: "How does the system verify it's working correctly?"},

	// Part 5: the lovability layer
	{Section: "The Polish That Matters", Number: 33, Text: "The Delight Detail", Hint: "One small thing that's unnecessarily perfect (OP-1's knobs, iPhone's rubber-band scroll)"},
	{Section: "The Polish That Matters", Number: 34, Text: "The Power User Secret", Hint: "One hidden feature for advanced users to discover"},
	{Section: "The Polish That Matters", Number: 35, Text: "The Personality Tell", Hint: "How does this product's personality show? (error messages, waiting states, success celebrations)"},
	{Section: "The Polish That Matters", Number: 36, Text: "The Unboxing", Hint: "First boot experience - what happens when it powers on fresh?"},
	{Section: "The Reality Check", Number: 37, Text: "The Minimum Lovable", Hint: "Below what threshold does this become unusable/unlovable?"},
	{Section: "The Reality Check", Number: 38, Text: "The Expansion Hook", Hint: "What's the OBVIOUS next feature you're intentionally NOT building now?"},
	{Section: "The Reality Check", Number: 39, Text: "The Success Metric", Hint: "ONE number that tells you if this worked"},
	{Section: "The Reality Check", Number: 40, Text: "The Kill Switch", Hint: "How does someone gracefully stop/reset everything?"},
}

package cards

var builtin = []Card{
	{Left: "Hot", Right: "Cold"},
	{Left: "Easy", Right: "Hard"},
	{Left: "Fast", Right: "Slow"},
	{Left: "Strong", Right: "Weak"},
	{Left: "Small", Right: "Big"},
	{Left: "Old", Right: "New"},
	{Left: "Beautiful", Right: "Ugly"},
	{Left: "Quiet", Right: "Loud"},
	{Left: "Simple", Right: "Complex"},
	{Left: "Natural", Right: "Artificial"},
	{Left: "Fun", Right: "Boring"},
	{Left: "Funny", Right: "Serious"},
	{Left: "Romantic", Right: "Not romantic at all"},
	{Left: "Relaxing", Right: "Stressful"},
	{Left: "Inspiring", Right: "Demoralizing"},
	{Left: "Brave", Right: "Cowardly"},
	{Left: "Clever", Right: "Foolish"},
	{Left: "Cool", Right: "Embarrassing"},
	{Left: "Makes you happy", Right: "Makes you sad"},
	{Left: "Exciting", Right: "Calming"},
	{Left: "Delicious", Right: "Disgusting"},
	{Left: "Healthy", Right: "Unhealthy"},
	{Left: "Sweet", Right: "Bitter"},
	{Left: "Home cooking", Right: "Eating out"},
	{Left: "Breakfast food", Right: "Dinner food"},
	{Left: "Snack", Right: "Filling meal"},
	{Left: "Tea", Right: "Coffee"},
	{Left: "Overrated", Right: "Underrated"},
	{Left: "Good movie", Right: "Bad movie"},
	{Left: "Hidden talent", Right: "Showing off"},
	{Left: "East", Right: "West"},
	{Left: "Minimalist", Right: "Maximalist"},
	{Left: "Physical strength", Right: "Mental strength"},
	{Left: "First impression", Right: "Last impression"},
	{Left: "Photogenic", Right: "Better in real life"},
	{Left: "Watching alone", Right: "Watching with friends"},
	{Left: "Early riser", Right: "Night owl"},
	{Left: "Making plans", Right: "Spontaneous decision"},
	{Left: "Receiving gifts", Right: "Giving gifts"},
	{Left: "Being famous", Right: "Staying anonymous"},
	{Left: "Talking", Right: "Listening"},
	{Left: "Useful", Right: "Useless"},
	{Left: "Rare", Right: "Common"},
	{Left: "Expensive", Right: "Cheap"},
	{Left: "Safe", Right: "Dangerous"},
	{Left: "Legal", Right: "Illegal"},
	{Left: "Smells good", Right: "Smells bad"},
	{Left: "Good habit", Right: "Bad habit"},
	{Left: "Hero", Right: "Villain"},
	{Left: "Mainstream", Right: "Niche"},
	{Left: "Dog person", Right: "Cat person"},
	{Left: "Summer", Right: "Winter"},
	{Left: "City life", Right: "Country life"},
	{Left: "Needs practice", Right: "Comes naturally"},
	{Left: "Trendy", Right: "Outdated"},
	{Left: "Ethical", Right: "Unethical"},
	{Left: "Soft", Right: "Rough"},
	{Left: "Wet", Right: "Dry"},
	{Left: "Job", Right: "Hobby"},
	{Left: "Sport", Right: "Not a sport"},
	{Left: "Fantasy", Right: "Science fiction"},
	{Left: "Guilty pleasure", Right: "Openly loved"},
	{Left: "Round", Right: "Pointy"},
	{Left: "Normal pet", Right: "Exotic pet"},
	{Left: "Tastes better hot", Right: "Tastes better cold"},
	{Left: "Worth the money", Right: "Waste of money"},
	{Left: "Forgettable", Right: "Unforgettable"},
	{Left: "Kid-friendly", Right: "Adults only"},
	{Left: "Underpaid", Right: "Overpaid"},
	{Left: "Good gift", Right: "Bad gift"},
}

// Builtin returns a copy of the built-in content table.
func Builtin() []Card {
	out := make([]Card, len(builtin))
	copy(out, builtin)
	return out
}

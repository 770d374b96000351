package pose

// defaultPoses is the built-in library every booth ships with.
var defaultPoses = []Pose{
	{
		ID:          "portrait-professional",
		Name:        "Professional Portrait",
		Description: "Classic headshot with confident expression",
		Category:    CategoryPortrait,
		ImageURL:    "/poses/portrait-professional.jpg",
		Instructions: []string{
			"Stand or sit with shoulders back",
			"Chin slightly forward and down",
			"Look directly at camera",
			"Subtle smile or neutral expression",
		},
	},
	{
		ID:          "portrait-casual",
		Name:        "Casual Portrait",
		Description: "Relaxed and approachable headshot",
		Category:    CategoryPortrait,
		ImageURL:    "/poses/portrait-casual.jpg",
		Instructions: []string{
			"Slight angle to camera",
			"Natural smile",
			"Relaxed shoulders",
			"Can include hand gestures near face",
		},
	},
	{
		ID:          "portrait-profile",
		Name:        "Profile Portrait",
		Description: "Side profile for artistic effect",
		Category:    CategoryPortrait,
		ImageURL:    "/poses/portrait-profile.jpg",
		Instructions: []string{
			"Turn 90 degrees from camera",
			"Keep posture straight",
			"Look straight ahead or slightly up",
			"Showcase jawline and profile",
		},
	},
	{
		ID:          "fullbody-standing",
		Name:        "Standing Confident",
		Description: "Full body standing pose with confidence",
		Category:    CategoryFullBody,
		ImageURL:    "/poses/fullbody-standing.jpg",
		Instructions: []string{
			"Stand with feet shoulder-width apart",
			"Weight on one leg for dynamic pose",
			"Hands on hips or crossed arms",
			"Direct eye contact with camera",
		},
	},
	{
		ID:          "fullbody-walking",
		Name:        "Walking Pose",
		Description: "Dynamic walking or stepping pose",
		Category:    CategoryFullBody,
		ImageURL:    "/poses/fullbody-walking.jpg",
		Instructions: []string{
			"Mid-step position",
			"Natural arm swing",
			"Look forward or to the side",
			"Capture movement and energy",
		},
	},
	{
		ID:          "fullbody-leaning",
		Name:        "Leaning Casual",
		Description: "Leaning against wall or prop",
		Category:    CategoryFullBody,
		ImageURL:    "/poses/fullbody-leaning.jpg",
		Instructions: []string{
			"Find a wall or vertical surface",
			"Lean with shoulder or back",
			"Cross legs or ankles",
			"Relaxed arm positions",
		},
	},
	{
		ID:          "sitting-formal",
		Name:        "Formal Sitting",
		Description: "Professional seated pose",
		Category:    CategorySitting,
		ImageURL:    "/poses/sitting-formal.jpg",
		Instructions: []string{
			"Sit with back straight",
			"Feet flat on floor",
			"Hands on lap or armrests",
			"Professional expression",
		},
	},
	{
		ID:          "sitting-casual",
		Name:        "Casual Sitting",
		Description: "Relaxed seated position",
		Category:    CategorySitting,
		ImageURL:    "/poses/sitting-casual.jpg",
		Instructions: []string{
			"Sit comfortably",
			"Can cross legs",
			"Lean forward slightly",
			"Natural, relaxed expression",
		},
	},
	{
		ID:          "sitting-floor",
		Name:        "Floor Sitting",
		Description: "Sitting on floor or low surface",
		Category:    CategorySitting,
		ImageURL:    "/poses/sitting-floor.jpg",
		Instructions: []string{
			"Cross-legged or legs to side",
			"Support with hands if needed",
			"Relaxed posture",
			"Engaging eye contact",
		},
	},
	{
		ID:          "creative-action",
		Name:        "Action Shot",
		Description: "Dynamic movement or action",
		Category:    CategoryCreative,
		ImageURL:    "/poses/creative-action.jpg",
		Instructions: []string{
			"Jump, spin, or dynamic movement",
			"Express energy and motion",
			"Use props if available",
			"Multiple shots for best result",
		},
	},
	{
		ID:          "creative-artistic",
		Name:        "Artistic Expression",
		Description: "Unique and creative pose",
		Category:    CategoryCreative,
		ImageURL:    "/poses/creative-artistic.jpg",
		Instructions: []string{
			"Experiment with angles",
			"Use dramatic lighting",
			"Express emotion or concept",
			"Think outside the box",
		},
	},
	{
		ID:          "creative-props",
		Name:        "With Props",
		Description: "Incorporating props or accessories",
		Category:    CategoryCreative,
		ImageURL:    "/poses/creative-props.jpg",
		Instructions: []string{
			"Use available props naturally",
			"Interact with the prop",
			"Let prop enhance the story",
			"Keep focus on subject",
		},
	},
}

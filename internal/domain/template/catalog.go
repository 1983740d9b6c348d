package template

var healthTemplates = []ActivityTemplate{
	{
		ID:          "health.vet-visit",
		Category:    CategoryHealth,
		Subcategory: "Vet Visit",
		Label:       "Vet Visit",
		Icon:        "stethoscope",
		Description: "Checkups, consultations and follow-ups at the clinic",
		Blocks: []BlockDef{
			titleBlock("Annual checkup"),
			timeBlock(TimeModeDateTime),
			locationBlock("Clinic"),
			peopleBlock("vet", "other"),
			notesBlock(),
			costBlock("medical", false),
			attachmentBlock("Documents"),
			reminderBlock(),
		},
	},
	{
		ID:          "health.vaccination",
		Category:    CategoryHealth,
		Subcategory: "Vaccination",
		Label:       "Vaccination",
		Icon:        "syringe",
		Description: "Record a vaccine and schedule the next dose",
		Blocks: []BlockDef{
			titleBlock("Rabies booster"),
			timeBlock(TimeModeDateTime),
			notesBlock(),
			costBlock("medical", false),
			reminderBlock(),
			attachmentBlock("Certificate"),
		},
	},
	{
		ID:                "health.medication",
		Category:          CategoryHealth,
		Subcategory:       "Medication",
		Label:             "Medication",
		Icon:              "pill",
		Description:       "Doses of medicine or supplements",
		IsQuickLogEnabled: true,
		Blocks: []BlockDef{
			titleBlock("Morning dose"),
			timeBlock(TimeModeDateTime),
			portionBlock(BrandMedication, "tablet", true),
			recurrenceBlock(),
			reminderBlock(),
			notesBlock(),
		},
	},
	{
		ID:          "health.symptom",
		Category:    CategoryHealth,
		Subcategory: "Symptom Check",
		Label:       "Symptom Check",
		Icon:        "thermometer",
		Description: "Track symptoms and how severe they look",
		Blocks: []BlockDef{
			titleBlock("Coughing"),
			timeBlock(TimeModeDateTime),
			ratingBlock("severity", "Severity"),
			checklistBlock("Symptoms", "Vomiting", "Diarrhea", "Lethargy", "Coughing", "Sneezing", "Itching"),
			notesBlock(),
			attachmentBlock("Photos"),
		},
	},
}

var growthTemplates = []ActivityTemplate{
	{
		ID:                "growth.weight",
		Category:          CategoryGrowth,
		Subcategory:       "Weight",
		Label:             "Weight",
		Icon:              "scale",
		Description:       "Weigh-ins for the weight trend",
		IsQuickLogEnabled: true,
		Blocks: []BlockDef{
			titleBlock("Weekly weigh-in"),
			timeBlock(TimeModeDateTime),
			{
				ID:       "weight",
				Type:     BlockMeasurement,
				Label:    "Weight",
				Required: true,
				Config:   &MeasurementConfig{MeasurementType: "weight", Units: []string{"kg", "lb", "g"}, DefaultUnit: "kg"},
			},
			notesBlock(),
		},
	},
	{
		ID:          "growth.height",
		Category:    CategoryGrowth,
		Subcategory: "Height",
		Label:       "Height",
		Icon:        "ruler",
		Description: "Height or body length measurements",
		Blocks: []BlockDef{
			titleBlock("Height check"),
			timeBlock(TimeModeDateTime),
			{
				ID:       "height",
				Type:     BlockMeasurement,
				Label:    "Height",
				Required: true,
				Config:   &MeasurementConfig{MeasurementType: "height", Units: []string{"cm", "in"}, DefaultUnit: "cm"},
			},
			notesBlock(),
		},
	},
	{
		ID:          "growth.milestone",
		Category:    CategoryGrowth,
		Subcategory: "Milestone",
		Label:       "Milestone",
		Icon:        "star",
		Description: "Firsts and other memorable moments",
		Blocks: []BlockDef{
			titleBlock("First birthday"),
			timeBlock(TimeModeDate),
			notesBlock(),
			attachmentBlock("Photos"),
		},
	},
}

var dietTemplates = []ActivityTemplate{
	{
		ID:                "diet.feeding",
		Category:          CategoryDiet,
		Subcategory:       "Feeding",
		Label:             "Feeding",
		Icon:              "bowl",
		Description:       "Meals with portion and brand",
		IsQuickLogEnabled: true,
		Blocks: []BlockDef{
			titleBlock("Breakfast"),
			timeBlock(TimeModeDateTime),
			portionBlock(BrandFood, "g", true),
			ratingBlock("appetite", "Appetite"),
			notesBlock(),
		},
	},
	{
		ID:                "diet.treat",
		Category:          CategoryDiet,
		Subcategory:       "Treat",
		Label:             "Treat",
		Icon:              "bone",
		Description:       "Snacks and rewards",
		IsQuickLogEnabled: true,
		Blocks: []BlockDef{
			titleBlock("Training treat"),
			timeBlock(TimeModeDateTime),
			portionBlock(BrandTreats, "piece", false),
			notesBlock(),
		},
	},
	{
		ID:                "diet.water",
		Category:          CategoryDiet,
		Subcategory:       "Water Intake",
		Label:             "Water Intake",
		Icon:              "droplet",
		Description:       "Daily hydration",
		IsQuickLogEnabled: true,
		Blocks: []BlockDef{
			titleBlock("Water refill"),
			timeBlock(TimeModeDateTime),
			{
				ID:       "volume",
				Type:     BlockMeasurement,
				Label:    "Amount",
				Required: true,
				Config:   &MeasurementConfig{MeasurementType: "volume", Units: []string{"ml", "l"}, DefaultUnit: "ml"},
			},
			notesBlock(),
		},
	},
}

var lifestyleTemplates = []ActivityTemplate{
	{
		ID:                "lifestyle.walk",
		Category:          CategoryLifestyle,
		Subcategory:       "Walk",
		Label:             "Walk",
		Icon:              "paw",
		Description:       "Walks with duration, place and weather",
		IsQuickLogEnabled: true,
		Blocks: []BlockDef{
			titleBlock("Evening walk"),
			timeBlock(TimeModeDateTime),
			timerBlock(30),
			locationBlock("Park", "Neighborhood"),
			{ID: "weather", Type: BlockWeather, Label: "Weather"},
			ratingBlock("energy", "Energy"),
			notesBlock(),
		},
	},
	{
		ID:          "lifestyle.play",
		Category:    CategoryLifestyle,
		Subcategory: "Play",
		Label:       "Play",
		Icon:        "ball",
		Description: "Play sessions and social time",
		Blocks: []BlockDef{
			titleBlock("Fetch"),
			timeBlock(TimeModeDateTime),
			timerBlock(15),
			ratingBlock("mood", "Mood"),
			peopleBlock("sitter", "walker", "other"),
			notesBlock(),
		},
	},
	{
		ID:          "lifestyle.grooming",
		Category:    CategoryLifestyle,
		Subcategory: "Grooming",
		Label:       "Grooming",
		Icon:        "scissors",
		Description: "Baths, brushing and nail trims",
		Blocks: []BlockDef{
			titleBlock("Bath day"),
			timeBlock(TimeModeDateTime),
			portionBlock(BrandGrooming, "serving", false),
			checklistBlock("Tasks", "Bath", "Brushing", "Nail trim", "Ear cleaning", "Teeth"),
			costBlock("grooming", false),
			notesBlock(),
		},
	},
	{
		ID:          "lifestyle.training",
		Category:    CategoryLifestyle,
		Subcategory: "Training",
		Label:       "Training",
		Icon:        "target",
		Description: "Training sessions and commands practiced",
		Blocks: []BlockDef{
			titleBlock("Recall practice"),
			timeBlock(TimeModeDateTime),
			timerBlock(20),
			checklistBlock("Commands", "Sit", "Stay", "Come", "Down", "Heel"),
			ratingBlock("mood", "Focus"),
			recurrenceBlock(),
			notesBlock(),
		},
	},
}

var expenseTemplates = []ActivityTemplate{
	{
		ID:          "expense.food",
		Category:    CategoryExpense,
		Subcategory: "Food",
		Label:       "Food Purchase",
		Icon:        "cart",
		Description: "Food bought for the pet",
		Blocks: []BlockDef{
			titleBlock("Kibble restock"),
			timeBlock(TimeModeDate),
			costBlock("food", true),
			portionBlock(BrandFood, "kg", false),
			attachmentBlock("Receipt"),
			notesBlock(),
		},
	},
	{
		ID:          "expense.medical",
		Category:    CategoryExpense,
		Subcategory: "Medical",
		Label:       "Medical Bill",
		Icon:        "receipt",
		Description: "Vet bills and medicine purchases",
		Blocks: []BlockDef{
			titleBlock("Clinic invoice"),
			timeBlock(TimeModeDate),
			costBlock("medical", true),
			attachmentBlock("Invoice"),
			notesBlock(),
		},
	},
	{
		ID:          "expense.supplies",
		Category:    CategoryExpense,
		Subcategory: "Supplies",
		Label:       "Supplies",
		Icon:        "box",
		Description: "Litter, leashes, beds and other supplies",
		Blocks: []BlockDef{
			titleBlock("New leash"),
			timeBlock(TimeModeDate),
			{
				ID:     "kind",
				Type:   BlockSubcategory,
				Label:  "Kind",
				Config: &SubcategoryConfig{Options: []string{"Litter", "Bedding", "Leash & Collar", "Bowls", "Carrier", "Other"}},
			},
			costBlock("supplies", true),
			notesBlock(),
		},
	},
	{
		ID:          "expense.toys",
		Category:    CategoryExpense,
		Subcategory: "Toys",
		Label:       "Toys",
		Icon:        "gift",
		Description: "Toys and enrichment",
		Blocks: []BlockDef{
			titleBlock("Chew toy"),
			timeBlock(TimeModeDate),
			costBlock("toys", true),
			portionBlock(BrandToys, "piece", false),
			notesBlock(),
		},
	},
}

package content

func explanation(text string) *string {
	return &text
}

func starterQuestions() []NewQuestion {
	return []NewQuestion{
		{
			Category: "phishing",
			Prompt:   "You receive an email from 'IT Support' asking to reset your password via a link. The sender address looks odd. What should you do?",
			Options: []string{
				"Click the link and reset immediately",
				"Ignore the email or verify via official IT channel",
				"Forward to friends to warn them",
				"Reply asking for more details",
			},
			CorrectIndex: 1,
			Explanation:  explanation("Always verify using official channels. Suspicious links could be phishing."),
			Difficulty:   "easy",
		},
		{
			Category: "credential",
			Prompt:   "You signed up for a new app. To save time, you reuse your school account password. Is this safe?",
			Options: []string{
				"Yes, if the app is popular",
				"No, use a unique password for each account",
				"Only if you enable dark mode",
				"Yes, if you use incognito",
			},
			CorrectIndex: 1,
			Explanation:  explanation("Credential reuse increases risk. Use unique passwords or a password manager."),
			Difficulty:   "easy",
		},
		{
			Category: "rogueapps",
			Prompt:   "A game APK from an unknown website promises free coins. What is the safest action?",
			Options: []string{
				"Install it and see",
				"Scan it with random tools",
				"Download but don't install",
				"Avoid and only install from official stores",
			},
			CorrectIndex: 3,
			Explanation:  explanation("Rogue apps often carry malware. Use official app stores only."),
			Difficulty:   "easy",
		},
	}
}

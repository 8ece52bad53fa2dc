package ui

import (
	"time"

	"github.com/lunarcatowo/termfolio/internal/config"
	"github.com/lunarcatowo/termfolio/internal/github"
)

// IsAprilFools reports whether joke content should replace the real data.
// In auto mode that is April 1st and 2nd in the local calendar.
func IsAprilFools(now time.Time, mode config.Mode) bool {
	switch mode {
	case config.ModeOn:
		return true
	case config.ModeOff:
		return false
	}
	_, month, day := now.Date()
	return month == time.April && (day == 1 || day == 2)
}

const (
	defaultBio = "I'm LunarcatOwO, a random student developer."

	foolsBio        = "UwU, I'm a professional cat meme creator now! I make the best cat memes in the universe!"
	foolsBioPS      = "Don't worry, I'll be back to coding tomorrow!"
	foolsReposIntro = `April Fools! Check out my "totally real" projects...`
	foolsReposPS    = "Don't worry, my real projects will be back tomorrow!"
	foolsSkillIntro = "April Fools! Here are my REAL skills..."
	foolsSkillPS    = "Don't worry, I'll be back to serious coding tomorrow!"
	foolsSkillLevel = "Master Level"
)

const foolsURL = "https://github.com/lunarcatowo"

var foolsRepos = []github.Repo{
	{
		ID:              1,
		Name:            "CatMemeGenerator3000",
		Description:     "Advanced AI that generates cat memes based on your mood. Trained on 10 billion cat pictures.",
		Language:        "CatScript",
		StargazersCount: 9999,
	},
	{
		ID:              2,
		Name:            "QuantumToaster",
		Description:     "Toast bread in multiple dimensions simultaneously. Butter applied in the 4th dimension for maximum coverage.",
		Language:        "BreadML",
		StargazersCount: 8765,
	},
	{
		ID:              3,
		Name:            "NapOptimizer",
		Description:     "Scientifically calculates the perfect nap duration based on your caffeine intake, sleep debt, and meeting schedule.",
		Language:        "ZzzScript",
		StargazersCount: 5432,
	},
	{
		ID:              4,
		Name:            "UnicornPixelArt",
		Description:     "Procedurally generates pixel art of unicorns riding rainbows in space. NFT integration coming soon!",
		Language:        "GlitterSharp",
		StargazersCount: 7654,
	},
	{
		ID:              5,
		Name:            "RubberDuckDebugger",
		Description:     "AI-powered rubber duck that actually responds to your code explanations with sarcastic quacks.",
		Language:        "QuackScript",
		StargazersCount: 4321,
	},
}

var foolsSkills = []string{
	"Underwater Basket Weaving",
	"Professional Yodeling",
	"Extreme Ironing",
	"Competitive Tea Brewing",
	"Cloud Watching",
	"Professional Pillow Fighting",
	"Extreme Origami",
	"Bubble Wrap Popping",
	"Professional Napping",
	"Rubber Duck Debugging",
}

// jokeRepos returns the April Fools repositories, all updated now.
func jokeRepos(now time.Time) []github.Repo {
	repos := make([]github.Repo, len(foolsRepos))
	for i, r := range foolsRepos {
		r.HTMLURL = foolsURL
		r.UpdatedAt = now
		repos[i] = r
	}
	return repos
}

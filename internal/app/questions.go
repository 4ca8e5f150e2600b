package app

import (
	"math/rand"
	"strings"
)

// SubjectPlaceholder is replaced with the round subject's name in every template
const SubjectPlaceholder = "XX"

// Questions is the prompt bank. XX is replaced with a player name.
var Questions = []string{
	"What's XX's favorite place to poop?",
	"If XX had a time machine, who would you go back in time to kill?",
	"If XX had bigger balls, I would have told that cop who pulled me over _____",
	"Where does XX spend most of their time these days?",
	"What's XX's favorite thing to eat on your burger?",
	"Name something XX used to do in recess?",
	"What are you spending money on that you're so broke?",
	"What was the most famous tattoo in 2020",
	"Name something you're afraid of",
	"What is XX too scared to eat",
	"Name something that goes good with alcohol",
	"Name a place that's great for a first date",
	"XX went on a themed cruise. What was the theme?",
	"Where do you wish you could go on a honeymoon if you had over $5000?",
	"What's the first thing XX thinks when they wake up in the morning?",
	"What's XX's go-to dinner?",
	"What's your least favorite law?",
	"If you could go back in time, who would you kill?",
	"What's XX's secret to looking good?",
	"What's XX's first crush?",
	"One time XX hit ___ with its car but never got caught",
	"One time XX woke up from a hangover in ___ but wasn't sure how they got there.",
	"That time XX got their car searched by the cops and found ___ in the trunk…",
	"XX once got caught ___ on the job.",
	"XX was caught ___ while on annual family fishing trip. They were never invited back.",
	"XX once ran into Obama at ___",
	"XX has secretly been recording an RNB album in their room. The hit song is titled ___",
	"XX sees dead people. They see them in ___",
	"XX marries just for their ___",
	"XX can breakdance but they can't ___",
	"XX likes to sing ___ but they honestly sound like shit",
	"XX would rather fucking die than spend one more minute ___",
	"XX once ate two ___ in one day and still later ate a burrito",
	"XX is secretly scared of ___",
	"XX can't stop doodling their name + ___ with hearts",
	"XX holds in their farts until they can get __",
	"XX wishes they had more hair on their ___",
	"XX would rather spend a night on the couch again than admit they ___",
	"XX dunks ___ in their coffee",
	"XX cries every time the song ___ comes on the radio",
	"XX cries every time their mind wanders and they remember ___",
	"Can you believe what XX did ___ at summer camp?",
	"XX has a ___ with your name on it",
	"XX slashed someone's tires because they ___",
	"XX got black out drunk and thought ___ was a bathroom",
	"XX believes leprechauns, unicorns and ___ are real",
	"XX thinks parenting is hard but they've never experienced ___",
	"XX thinks they once saw a UFO but they were just drunk and it was a ___",
	"XX never washes their hands after they ___",
	"What's the same thing XX confesses every Sunday at Church?",
	"If XX were an animal what animal would they be and why?",
	"If XX could choose a new career in life, what should they be?",
	"If XX suddenly won the lottery, what would they buy first?",
	"What was the reason XX recently went to the doctor?",
	"XX would never admit to voting for ___ but honestly, we all knew",
	"If XX were an Avenger, their super power would be __",
	"If XX were to rob a bank, what would they use as a mask?",
	"XX dips their fries in ___",
	"XX donated ___ to cars for kids instead of a car",
}

// RandomQuestion returns a random prompt template
func RandomQuestion() string {
	return Questions[rand.Intn(len(Questions))]
}

// RandomQuestionExcluding returns a random template that's not in the excluded list
func RandomQuestionExcluding(excluded []string) string {
	excludeMap := make(map[string]bool)
	for _, q := range excluded {
		excludeMap[q] = true
	}

	// Try to find a non-excluded template
	for attempts := 0; attempts < 50; attempts++ {
		q := RandomQuestion()
		if !excludeMap[q] {
			return q
		}
	}

	// All templates used up, just return any
	return RandomQuestion()
}

// FillSubject substitutes the subject's name into a prompt template
func FillSubject(template, name string) string {
	return strings.ReplaceAll(template, SubjectPlaceholder, name)
}

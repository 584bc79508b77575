package moderation

// defaultWords is the built-in single-word dictionary. Deployments extend it
// with custom entries at construction time; the list is immutable afterwards.
var defaultWords = []string{
	"idiot",
	"stupid",
	"dumb",
	"moron",
	"loser",
	"trash",
	"worthless",
	"pathetic",
	"ugly",
	"scum",
	"jerk",
	"freak",
	"creep",
	"imbecile",
	"dimwit",
}

// defaultPhrases are multi-word patterns matched as substrings of the
// normalized text. Matching is intentionally liberal: a longer sentence
// containing one of these is blocked.
var defaultPhrases = []string{
	// Direct insults
	"you are stupid",
	"you're stupid",
	"you are dumb",
	"you're dumb",
	"you are an idiot",
	"you're an idiot",
	"you are useless",
	"you're useless",
	"you are a loser",
	"you're a loser",
	"you are worthless",
	"you're worthless",
	"you are ugly",
	"you're ugly",
	"nobody likes you",
	"everyone hates you",

	// Threats / violence
	"i will kill you",
	"you should die",
	"go kill yourself",
	"you deserve to die",
	"i hope you die",
	"i will hurt you",
	"you will pay for this",

	// Harassment / bullying
	"get lost loser",
	"you are trash",
	"you're trash",
	"you're nothing",
	"you are nothing",
	"shut up idiot",
	"stop talking to me loser",
	"you make me sick",
	"go to hell",
	"burn in hell",
	"no one cares about you",
	"kill yourself",

	// Misc abusive tone
	"you're such a freak",
	"what a pathetic person",
	"you don't deserve friends",
	"you're so pathetic",
	"you make everyone miserable",
}

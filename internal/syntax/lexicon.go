package syntax

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var auxiliaries = set(
	"am", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did",
	"can", "could", "will", "would", "shall", "should", "may", "might", "must",
	"i'm", "you're", "he's", "she's", "it's", "we're", "they're", "that's", "there's",
	"i've", "you've", "we've", "they've", "i'll", "you'll", "he'll", "she'll", "we'll", "they'll",
)

var commonVerbs = set(
	"go", "goes", "went", "gone", "going",
	"get", "gets", "got", "getting",
	"make", "makes", "made", "making",
	"take", "takes", "took", "taken", "taking",
	"see", "sees", "saw", "seen", "seeing",
	"come", "comes", "came", "coming",
	"know", "knows", "knew", "known",
	"think", "thinks", "thought",
	"want", "wants", "wanted",
	"like", "likes", "liked",
	"eat", "eats", "ate", "eaten", "eating",
	"run", "runs", "ran", "running",
	"play", "plays", "played", "playing",
	"read", "reads", "reading",
	"write", "writes", "wrote", "written", "writing",
	"say", "says", "said",
	"tell", "tells", "told",
	"give", "gives", "gave", "given",
	"find", "finds", "found",
	"feel", "feels", "felt",
	"love", "loves", "loved",
	"need", "needs", "needed",
	"live", "lives", "lived",
	"work", "works", "worked", "working",
	"look", "looks", "looked", "looking",
	"buy", "buys", "bought",
	"bring", "brings", "brought",
	"teach", "teaches", "taught",
	"learn", "learns", "learned", "learnt",
	"study", "studies", "studied",
	"sleep", "sleeps", "slept",
	"walk", "walks", "walked",
	"jump", "jumps", "jumped",
	"watch", "watches", "watched",
	"sit", "sits", "sat",
	"stand", "stands", "stood",
	"put", "puts", "keep", "keeps", "kept",
	"help", "helps", "helped",
	"start", "starts", "started",
	"finish", "finishes", "finished",
	"understand", "understands", "understood",
	"agree", "agrees", "agreed",
	"leave", "leaves", "left",
	"meet", "meets", "met",
	"call", "calls", "called",
	"open", "opens", "opened", "close", "closes", "closed",
	"appears", "appeared", "seems", "seemed", "became", "becomes",
)

var pronouns = set(
	"i", "you", "he", "she", "it", "we", "they",
	"this", "that", "these", "those", "there",
	"who", "someone", "somebody", "everyone", "everybody", "nobody", "anyone", "something", "everything", "nothing",
	"i'm", "you're", "he's", "she's", "it's", "we're", "they're", "that's", "there's",
)

// nonSubjects are words that may precede a verb without being its subject
var nonSubjects = set(
	"to", "and", "but", "or", "so", "then", "also", "just", "still", "never", "always", "often",
	"sometimes", "usually", "not", "please", "yesterday", "today", "tomorrow", "now", "later",
	"in", "on", "at", "after", "before", "with", "without", "for", "from", "by", "of", "about",
	"when", "while", "if", "because", "although", "very", "too", "really", "again", "soon",
)

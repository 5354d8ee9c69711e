package scraper

import (
	"fmt"
	"strings"
	"time"
)

// Category keyword sets. Species words score double a breed-name hit so an
// explicit "cat" outweighs an incidental breed mention.
var (
	dogSpecies = []string{"dog", "puppy", "犬", "狗"}
	dogBreeds  = []string{"mongrel", "labrador", "retriever", "poodle", "corgi", "shiba", "terrier", "beagle", "pomeranian", "chihuahua", "唐狗"}

	catSpecies = []string{"cat", "kitten", "feline", "貓"}
	catBreeds  = []string{"domestic short hair", "domestic long hair", "shorthair", "siamese", "tabby", "唐貓"}

	otherSpecies = []string{"rabbit", "bunny", "hamster", "bird", "parrot", "turtle", "guinea pig", "兔", "倉鼠"}
)

// Synthesizer assembles schema-complete records from whatever the
// extractor resolved. Every required field gets a real or documented
// default value; downstream consumers never see a partial record.
type Synthesizer struct {
	orgSlug string
	contact Contact
	now     func() time.Time
}

// NewSynthesizer creates a synthesizer stamping records with the given
// source slug and contact block.
func NewSynthesizer(orgSlug string, contact Contact) *Synthesizer {
	return &Synthesizer{orgSlug: orgSlug, contact: contact, now: time.Now}
}

// Build assembles the final record for one identifier.
func (s *Synthesizer) Build(identifier string, p PartialRecord, images []string) Record {
	name := p.Name
	if name == "" {
		name = "Pet " + identifier
	}

	gender := p.Gender
	if gender == "" {
		gender = "unknown"
	}

	breed := p.Breed
	if breed == "" {
		breed = "Mixed Breed"
	}

	age := "Unknown"
	if p.AgeKnown {
		age = ageBucket(p.AgeMonths)
	}

	description := s.buildDescription(name, breed, p)
	category := ClassifyCategory(name, breed, description)

	if len(images) == 0 {
		images = []string{PlaceholderImage(identifier)}
	}

	return Record{
		ID:          s.orgSlug + "-" + identifier,
		SourceID:    identifier,
		Name:        name,
		Category:    category,
		Breed:       breed,
		Age:         age,
		Gender:      gender,
		Desexed:     p.Desexed,
		Description: description,
		ImageURL:    images[0],
		Images:      images,
		Contact:     s.contact,
		Status:      StatusAdoptable,
		BirthDate:   p.BirthDate,
		Microchip:   p.Microchip,
		Center:      p.Center,
		Intake:      p.Intake,
		Tags:        p.Tags,
		Provenance:  ProvenanceScraped,
		CreatedAt:   s.now().UTC(),
	}
}

// ageBucket maps an age in months onto the descriptive scale shown to
// adopters.
func ageBucket(months int) string {
	switch {
	case months < 3:
		return "Infant"
	case months < 12:
		return fmt.Sprintf("%d months", months)
	case months < 24:
		return "1 year"
	default:
		return fmt.Sprintf("%d years", months/12)
	}
}

// buildDescription assembles the displayed description: a basic-info
// sentence, the intake clause when distinct from the centre, the captured
// prose, then location and birthday lines. The result is never empty.
func (s *Synthesizer) buildDescription(name, breed string, p PartialRecord) string {
	var parts []string

	basic := fmt.Sprintf("%s is a %s.", name, describeBasics(breed, p))
	parts = append(parts, basic)

	if p.Intake != "" && !strings.EqualFold(p.Intake, p.Center) {
		parts = append(parts, fmt.Sprintf("Intake: %s.", strings.TrimRight(p.Intake, ".")))
	}

	if p.About != "" {
		parts = append(parts, p.About)
	} else {
		parts = append(parts, fmt.Sprintf("%s is looking for a loving home.", name))
	}

	if p.Center != "" {
		parts = append(parts, fmt.Sprintf("You can meet %s at %s.", name, strings.TrimRight(p.Center, ".")))
	}
	if p.BirthDate != "" {
		parts = append(parts, fmt.Sprintf("Born on %s.", p.BirthDate))
	}

	return strings.Join(parts, " ")
}

func describeBasics(breed string, p PartialRecord) string {
	var words []string
	if p.DesexedKnown && p.Desexed {
		words = append(words, "desexed")
	}
	if p.Gender != "" {
		words = append(words, p.Gender)
	}
	words = append(words, breed)
	return strings.Join(words, " ")
}

// ClassifyCategory scores species and breed keywords across the record's
// text. Ties and zero-signal inputs default to dog, which matches the
// upstream population.
func ClassifyCategory(name, breed, description string) string {
	text := strings.ToLower(name + " " + breed + " " + description)

	dog := keywordScore(text, dogSpecies, 2) + keywordScore(text, dogBreeds, 1)
	cat := keywordScore(text, catSpecies, 2) + keywordScore(text, catBreeds, 1)
	other := keywordScore(text, otherSpecies, 2)

	if cat > dog && cat >= other {
		return CategoryCat
	}
	if other > dog && other > cat {
		return CategoryOther
	}
	return CategoryDog
}

func keywordScore(text string, words []string, weight int) int {
	score := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			score += weight
		}
	}
	return score
}

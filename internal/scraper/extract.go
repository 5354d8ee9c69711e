package scraper

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// maxAgeMonths rejects computed ages beyond plausibility (20 years). An
// out-of-bounds age is discarded, not clamped, so the field stays unset
// rather than wrong.
const maxAgeMonths = 240

// defaultCenters are the full adoption-centre names recognized when no
// "find me at" phrasing resolves a location.
var defaultCenters = []string{
	"Harbourside Centre",
	"Kowloon Adoption Centre",
	"Sai Kung Centre",
	"Mong Kok Centre",
	"Pok Fu Lam Centre",
	"Tsing Yi Centre",
	"灣仔領養中心",
	"九龍領養中心",
}

// desexedKeywords includes localized equivalents; detection is independent
// of the gender match succeeding.
var desexedKeywords = []string{
	"desexed", "de-sexed", "neutered", "spayed", "sterilised", "sterilized",
	"已絕育", "絕育",
}

// knownBreeds is the curated fallback list tried when no breed label is
// found near the value.
var knownBreeds = []string{
	"Mongrel", "Labrador Retriever", "Golden Retriever", "Poodle", "Corgi",
	"Shiba Inu", "Beagle", "Terrier", "Pomeranian", "Chihuahua",
	"Domestic Short Hair", "Domestic Long Hair", "British Shorthair",
	"Siamese", "Tabby", "唐狗", "唐貓",
}

// personalityWords is the closed adjective list scanned for the tag list.
var personalityWords = []string{
	"playful", "gentle", "shy", "energetic", "affectionate", "curious",
	"calm", "friendly", "loyal", "independent", "smart", "active", "quiet",
	"sweet", "活潑", "溫柔", "害羞", "親人", "聰明",
}

var nameStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "so": true, "very": true,
	"not": true, "now": true, "here": true, "still": true,
	"looking": true, "waiting": true, "ready": true,
}

// Field patterns. Each field gets an ordered cascade; the first match that
// survives cleanup and validation wins.
var (
	nameRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhi[,!]?\s*i\s*['’]?m\s+([A-Za-z][A-Za-z'’-]*)`),
		regexp.MustCompile(`(?i)\bmy name is\s+([A-Za-z][A-Za-z'’-]*)`),
		regexp.MustCompile(`(?i)\bi am\s+([A-Za-z][A-Za-z'’-]*)`),
	}

	genderLabelRe      = regexp.MustCompile(`(?i)gender\s*[:：]?\s*(male|female|公|母|男|女)`)
	genderStandaloneRe = regexp.MustCompile(`(?i)\b(male|female)\b`)

	breedLabelRe  = regexp.MustCompile(`(?i)breed\s*[:：]\s*([^\n]{2,40})`)
	breedBeforeRe = regexp.MustCompile(`(?i)([\p{L}][\p{L}()'’ /-]{1,39}?)[\s.]*\bbreed\b`)

	birthLabelRe = regexp.MustCompile(`(?i)(?:birthday|birth\s*date|date of birth|出生日期)\D{0,10}(\d{4}-\d{1,2}-\d{1,2})`)
	birthBareRe  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

	microchipRe = regexp.MustCompile(`(?i)(?:microchip(?:\s*(?:no|number|#))?|chip\s*(?:no|number)|晶片(?:編號)?)\D{0,10}(\d[\d \-]{4,22}\d)`)

	foundAtRe = regexp.MustCompile(`(?i)(?:you can\s+)?(?:find|found) me at(?:\s+the)?\s+([^\n.!,]{3,60})`)
	intakeRe  = regexp.MustCompile(`(?i)intake\s*[:：]\s*([^\n]{3,80})`)

	aboutRe = regexp.MustCompile(`(?is)about\s*me\s*[:：]?\s*(.+?)\s*(?:follow\s+(?:me|us)|facebook|instagram|youtube|whatsapp|\bhints?\b|\bcentre\b|\bcenter\b|$)`)

	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	OrgName string   // excluded from field values as boilerplate
	Centers []string // known centre names; defaults used when empty
	Now     func() time.Time
}

// Extractor turns semi-structured detail-page markup into a
// PartialRecord. It never fails: fields whose cascade finds nothing
// plausible are simply left unset.
type Extractor struct {
	orgName string
	centers []string
	now     func() time.Time
}

// NewExtractor creates an extractor.
func NewExtractor(opts ExtractorOptions) *Extractor {
	centers := opts.Centers
	if len(centers) == 0 {
		centers = defaultCenters
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Extractor{orgName: opts.OrgName, centers: centers, now: now}
}

// Extract runs every field cascade against the page.
func (x *Extractor) Extract(markup []byte, identifier string) PartialRecord {
	text := textContent(markup)

	p := PartialRecord{}
	p.Name = x.extractName(text, markup, identifier)
	p.Gender = extractGender(text)
	p.Desexed, p.DesexedKnown = detectDesexed(text)
	p.Breed = x.extractBreed(text)
	p.BirthDate, p.AgeMonths, p.AgeKnown = x.extractBirthDate(text)
	p.Microchip = extractMicrochip(text)
	p.Center, p.Intake = x.resolveLocation(text)
	p.About = extractAbout(text)
	p.Tags = extractTags(p.About, text)

	return p
}

func (x *Extractor) extractName(text string, markup []byte, identifier string) string {
	for _, re := range nameRules {
		if m := re.FindStringSubmatch(text); m != nil {
			name := titleCase(strings.Trim(m[1], "'’-"))
			if x.validName(name) {
				return name
			}
		}
	}

	// Heading fallback: detail pages usually title themselves with the
	// pet's name.
	if h := headingText(markup); h != "" {
		h = strings.TrimRight(h, " !.?")
		if len(h) <= 40 && x.validName(strings.ToLower(h)) {
			return h
		}
	}

	return "Pet " + identifier
}

func (x *Extractor) validName(name string) bool {
	if len(name) < 2 || len(name) > 30 {
		return false
	}
	lower := strings.ToLower(name)
	if nameStopwords[lower] {
		return false
	}
	return !x.isBoilerplate(lower)
}

func extractGender(text string) string {
	if m := genderLabelRe.FindStringSubmatch(text); m != nil {
		return normalizeGender(m[1])
	}
	if m := genderStandaloneRe.FindStringSubmatch(text); m != nil {
		return normalizeGender(m[1])
	}
	return ""
}

func normalizeGender(token string) string {
	switch strings.ToLower(token) {
	case "male", "公", "男":
		return "male"
	case "female", "母", "女":
		return "female"
	}
	return ""
}

func detectDesexed(text string) (desexed, known bool) {
	lower := strings.ToLower(text)
	for _, kw := range desexedKeywords {
		if strings.Contains(lower, kw) {
			return true, true
		}
	}
	return false, false
}

func (x *Extractor) extractBreed(text string) string {
	for _, re := range []*regexp.Regexp{breedLabelRe, breedBeforeRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			breed := cleanBreed(m[1])
			if x.validBreed(breed) {
				return breed
			}
		}
	}

	lower := strings.ToLower(text)
	for _, breed := range knownBreeds {
		if strings.Contains(lower, strings.ToLower(breed)) {
			return breed
		}
	}

	return ""
}

// cleanBreed strips gender tokens, species words and parenthetical
// annotations like "(Desexed)" that ride along with breed values.
func cleanBreed(s string) string {
	s = parentheticalRe.ReplaceAllString(s, " ")

	var kept []string
	for _, word := range strings.Fields(s) {
		switch strings.ToLower(strings.Trim(word, ".,:;")) {
		case "male", "female", "dog", "cat", "puppy", "kitten", "公", "母", "狗", "貓":
			continue
		}
		kept = append(kept, strings.Trim(word, "."))
	}

	return strings.Trim(strings.Join(kept, " "), " -/,")
}

var breedStopwords = map[string]bool{
	"this": true, "that": true, "the": true, "my": true, "a": true,
	"mixed": true, "any": true, "his": true, "her": true, "no": true,
	"its": true, "what": true, "which": true, "every": true, "own": true,
}

func (x *Extractor) validBreed(breed string) bool {
	if len(breed) < 2 || len(breed) > 40 {
		return false
	}
	if breedStopwords[strings.ToLower(breed)] {
		return false
	}
	return !x.isBoilerplate(strings.ToLower(breed))
}

func (x *Extractor) extractBirthDate(text string) (iso string, months int, ok bool) {
	var raw string
	if m := birthLabelRe.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else if m := birthBareRe.FindStringSubmatch(text); m != nil {
		raw = m[1]
	}
	if raw == "" {
		return "", 0, false
	}

	born, err := time.Parse("2006-1-2", raw)
	if err != nil {
		return "", 0, false
	}

	months = monthsBetween(born, x.now())
	if months < 0 || months > maxAgeMonths {
		return "", 0, false
	}

	return born.Format("2006-01-02"), months, true
}

func monthsBetween(from, to time.Time) int {
	months := 12*(to.Year()-from.Year()) + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}

func extractMicrochip(text string) string {
	m := microchipRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	chip := whitespaceRe.ReplaceAllString(m[1], "")
	if digits := strings.Map(keepDigit, chip); len(digits) < 6 {
		return ""
	}
	return chip
}

func keepDigit(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

// resolveLocation extracts the centre and the intake note with an explicit
// priority and mutual-exclusion rule, since the two concepts co-occur in
// free text. A "find me at" phrasing wins outright; failing that a known
// centre name is searched; only then may an INTAKE value be reclassified
// as the centre.
func (x *Extractor) resolveLocation(text string) (center, intake string) {
	if m := foundAtRe.FindStringSubmatch(text); m != nil {
		center = strings.TrimSpace(m[1])
		if !x.validCenter(center) {
			center = ""
		}
	}

	if center == "" {
		lower := strings.ToLower(text)
		for _, known := range x.centers {
			if idx := strings.Index(lower, strings.ToLower(known)); idx >= 0 {
				center = text[idx : idx+len(known)]
				break
			}
		}
	}

	if m := intakeRe.FindStringSubmatch(text); m != nil {
		intake = strings.TrimSpace(m[1])
	}

	if center == "" && intake != "" && looksLikeCenter(intake) {
		center, intake = intake, ""
	}

	if intake != "" && strings.EqualFold(intake, center) {
		intake = ""
	}

	return center, intake
}

func (x *Extractor) validCenter(center string) bool {
	if len(center) < 3 || len(center) > 60 {
		return false
	}
	return !x.isBoilerplate(strings.ToLower(center))
}

func looksLikeCenter(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "centre") || strings.Contains(lower, "center") ||
		strings.Contains(s, "中心")
}

// extractAbout captures the prose block between the "about me" label and
// the next known section boundary.
func extractAbout(text string) string {
	m := aboutRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	about := strings.TrimSpace(whitespaceRe.ReplaceAllString(m[1], " "))
	if len(about) < 10 {
		return ""
	}
	if len(about) > 1000 {
		about = about[:1000]
	}
	return about
}

// extractTags scans for personality adjectives; the about block is
// preferred but the whole page is scanned when no block was captured.
func extractTags(about, text string) []string {
	source := about
	if source == "" {
		source = text
	}
	lower := strings.ToLower(source)

	var tags []string
	for _, word := range personalityWords {
		if strings.Contains(lower, word) {
			tags = append(tags, word)
		}
	}
	return tags
}

func (x *Extractor) isBoilerplate(lower string) bool {
	if x.orgName != "" && strings.Contains(lower, strings.ToLower(x.orgName)) {
		return true
	}
	for _, junk := range []string{"adopt", "http", "www.", "cookie", "login"} {
		if strings.Contains(lower, junk) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// textContent flattens markup into newline-separated text node content,
// skipping script and style subtrees. Plain-text bodies pass through
// unchanged, so the cascades work on garbled non-HTML responses too.
func textContent(markup []byte) string {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return string(markup)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return b.String()
}

func headingText(markup []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1, h2").First().Text())
}

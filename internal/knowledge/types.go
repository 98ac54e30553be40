package knowledge

// VectorDimension is the pgvector column dimension for all embeddings.
// Must match llm.EmbeddingDimension; enforced by the schema.
const VectorDimension = 768

// Lesson is one lesson entry in a course outline.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// Course is the catalog entry for one course.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"course_link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Chunk is the atomic unit of indexed course content.
type Chunk struct {
	Content      string
	CourseTitle  string
	LessonNumber int // -1 when the chunk is not tied to a lesson
	ChunkIndex   int
}

// Hit is one content search match.
type Hit struct {
	Content      string
	CourseTitle  string
	LessonNumber int // -1 when unknown
	LessonLink   string
	Similarity   float32
}

// SearchOption configures content search using the functional options pattern.
type SearchOption func(*searchConfig)

// searchConfig holds internal search configuration.
type searchConfig struct {
	limit        int
	limitSet     bool
	courseTitle  string
	lessonNumber int
	lessonSet    bool
}

// WithLimit sets an explicit result limit, overriding the store default.
func WithLimit(n int) SearchOption {
	return func(c *searchConfig) {
		c.limit = n
		c.limitSet = true
	}
}

// WithCourse restricts results to one canonical course title.
func WithCourse(title string) SearchOption {
	return func(c *searchConfig) {
		c.courseTitle = title
	}
}

// WithLesson restricts results to one lesson number.
func WithLesson(n int) SearchOption {
	return func(c *searchConfig) {
		c.lessonNumber = n
		c.lessonSet = true
	}
}

// buildSearchConfig applies options over the store's default limit.
func buildSearchConfig(defaultLimit int, opts []SearchOption) *searchConfig {
	cfg := &searchConfig{limit: defaultLimit}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

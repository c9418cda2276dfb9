package model

type SaveVerseRequest struct {
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

type SaveVerseResponse struct {
	ID string `json:"id"`
}

type CreatePostRequest struct {
	Kind     string `json:"kind"`
	Caption  string `json:"caption"`
	MediaURL string `json:"media_url"`
}

type CreatePostResponse struct {
	ID string `json:"id"`
}

type CompleteCourseRequest struct {
	CourseID string `json:"course_id"`
}

type CompleteCourseResponse struct {
	// Completed is false when the course had already been completed before.
	Completed bool `json:"completed"`
}

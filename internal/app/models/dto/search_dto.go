package dto

// CandidateSearchRequest carries the free-text teammate query
type CandidateSearchRequest struct {
	Query string `json:"query" binding:"required,min=3,max=500"`
}

// CandidateSearchResponse holds matched teamless profiles in relevance order
type CandidateSearchResponse struct {
	Results []UserResponse `json:"results"`
}

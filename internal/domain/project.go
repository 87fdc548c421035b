package domain

// Project represents a YouTrack project in the domain layer.
type Project struct {
	ID        string
	ShortName string // Prefix of readable issue ids, e.g. ABC in ABC-123
	Name      string
}

// Issue represents a YouTrack issue.
type Issue struct {
	ID         string
	IDReadable string
	Summary    string
	Project    Project
}

// User is the account the tracker token authenticates as.
type User struct {
	ID       string
	Login    string
	FullName string
}

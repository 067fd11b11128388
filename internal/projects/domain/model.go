package domain

import "time"

// Project is a single managed project. Deleted projects are kept and can be restored.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Manager   string    `json:"manager"`
	Client    string    `json:"client"`
	Deadline  time.Time `json:"deadline"`
	Deleted   bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Employee is a person that can be assigned to projects.
type Employee struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
}

// ProjectDetails is a project together with the employees assigned to it.
type ProjectDetails struct {
	Project   Project    `json:"project"`
	Employees []Employee `json:"employees"`
}

// ProjectInput carries the editable fields of a project.
type ProjectInput struct {
	Name     string
	Manager  string
	Client   string
	Deadline time.Time
}

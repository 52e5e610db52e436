package employees

import "time"

type Employee struct {
	ID        int64
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Position  *string
	Salary    *float64
	HireDate  *time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Fields carries the writable part of an employee record. Create forces
// IsActive to true; Update writes it as given.
type Fields struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Position  *string
	Salary    *float64
	HireDate  *time.Time
	IsActive  bool
}

type View struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	FullName  string     `json:"fullName"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Position  *string    `json:"position"`
	Salary    *float64   `json:"salary"`
	HireDate  *time.Time `json:"hireDate"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

func (e *Employee) View() View {
	return View{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		FullName:  e.FullName(),
		Email:     e.Email,
		Phone:     e.Phone,
		Position:  e.Position,
		Salary:    e.Salary,
		HireDate:  e.HireDate,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

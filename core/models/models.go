package models

type Teacher struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (t Teacher) EntityID() int { return t.ID }

// Student is a roster entry. Password is the plain shared secret used by the student portal;
// MathSkill, Difficulty and LastSheet are computed by the server.
type Student struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Password   string    `json:"password"`
	TeacherID  int       `json:"teacher_id"`
	MathSkill  string    `json:"math_skill"`
	Difficulty int       `json:"difficulty"`
	LastSheet  int       `json:"last_sheet"`
	Powerups   []Powerup `json:"powerups,omitempty"`
}

func (s Student) EntityID() int { return s.ID }

// NextSheet is the workbook sheet the student resumes on.
func (s Student) NextSheet() int { return s.LastSheet + 1 }

type Problem struct {
	ID        int    `json:"id"`
	StudentID int    `json:"student_id"`
	SheetID   int    `json:"sheet_id"`
	Type      string `json:"type,omitempty"`
	Question  string `json:"question"`
	Answer    string `json:"answer,omitempty"`
	Guess     string `json:"guess,omitempty"`
	IsSolved  bool   `json:"is_solved"`
}

func (p Problem) EntityID() int { return p.ID }

type Reward struct {
	ID        int    `json:"id"`
	StudentID int    `json:"student_id"`
	SheetID   int    `json:"sheet_id,omitempty"`
	Name      string `json:"name"`
}

func (r Reward) EntityID() int { return r.ID }

type Powerup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Cnt  int    `json:"cnt"`
}

type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type SheetSummary struct {
	SheetID     int `json:"sheet_id"`
	NumProblems int `json:"num_problems"`
	NumSolved   int `json:"num_solved"`
}

type Report struct {
	StudentID  int            `json:"student_id"`
	MathSkill  string         `json:"math_skill"`
	Difficulty int            `json:"difficulty"`
	LastSheet  int            `json:"last_sheet"`
	Sheets     []SheetSummary `json:"sheets"`
}

// AuthToken is returned when a teacher signs up or signs in.
type AuthToken struct {
	Token   string   `json:"token"`
	Teacher *Teacher `json:"teacher,omitempty"`
}

// Notice is the data of endpoints that only acknowledge a request.
type Notice struct {
	Message string `json:"message,omitempty"`
}

// Requests

type NewAuthToken struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type NewTeacher struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TeacherUpdate defines what information may be provided to modify an existing Teacher.
type TeacherUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type NewStudent struct {
	Name      string `json:"name" label:"student name" validate:"required"`
	TeacherID int    `json:"teacher_id,omitempty"`
}

// StudentUpdate carries only the changed fields plus the student id.
type StudentUpdate struct {
	StudentID  int     `json:"student_id" label:"student id" validate:"required"`
	Name       *string `json:"name,omitempty"`
	Password   *string `json:"password,omitempty"`
	MathSkill  *string `json:"math_skill,omitempty"`
	Difficulty *int    `json:"difficulty,omitempty"`
}

type NewProblems struct {
	StudentID int `json:"student_id" label:"student id" validate:"required"`
	SheetID   int `json:"sheet_id" label:"sheet id" validate:"required"`
}

type PowerupAction struct {
	Action    string `json:"action"`
	StudentID int    `json:"student_id" label:"student id" validate:"required"`
	PowerupID int    `json:"powerup_id" label:"powerup id" validate:"required"`
}

type PowerupUpdate struct {
	PowerupID int `json:"-" label:"powerup id" validate:"required"`
	StudentID int `json:"-" label:"student id" validate:"required"`
	Cnt       int `json:"cnt" label:"count" validate:"min=0"`
}

type NewReward struct {
	StudentID int    `json:"student_id" label:"student id" validate:"required"`
	SheetID   int    `json:"sheet_id,omitempty"`
	Name      string `json:"name" label:"reward name" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

type PasswordReset struct {
	Token    string `json:"-" label:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

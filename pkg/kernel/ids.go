package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type ProfileID string

func NewProfileID(id string) ProfileID { return ProfileID(id) }
func (p ProfileID) String() string     { return string(p) }
func (p ProfileID) IsEmpty() bool      { return string(p) == "" }

type ImportID string

func NewImportID(id string) ImportID { return ImportID(id) }
func (i ImportID) String() string    { return string(i) }
func (i ImportID) IsEmpty() bool     { return string(i) == "" }

type Email string

func NewEmail(e string) Email   { return Email(e) }
func (e Email) String() string  { return string(e) }
func (e Email) IsEmpty() bool   { return string(e) == "" }

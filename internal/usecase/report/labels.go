package report

// labels are the fixed strings printed on a report
type labels struct {
	Report     string
	Date       string
	Company    string
	Agenda     string
	Attendees  string
	Minutes    string
	Actions    string
	Task       string
	AssignedTo string
	Deadline   string
	Status     string
	Done       string
	Open       string
	Overdue    string
	Total      string
	Page       string
	Of         string
	None       string
}

var catalogue = map[string]labels{
	"en": {
		Report:     "Meeting Report",
		Date:       "Date",
		Company:    "Company",
		Agenda:     "Agenda",
		Attendees:  "Attendees",
		Minutes:    "Minutes",
		Actions:    "Action Items",
		Task:       "Task",
		AssignedTo: "Assigned to",
		Deadline:   "Deadline",
		Status:     "Status",
		Done:       "Done",
		Open:       "Open",
		Overdue:    "Overdue",
		Total:      "Total",
		Page:       "Page",
		Of:         "of",
		None:       "-",
	},
	"fa": {
		Report:     "گزارش جلسه",
		Date:       "تاریخ",
		Company:    "شرکت",
		Agenda:     "دستور جلسه",
		Attendees:  "حاضرین",
		Minutes:    "صورتجلسه",
		Actions:    "اقدامات",
		Task:       "شرح",
		AssignedTo: "مسئول",
		Deadline:   "مهلت",
		Status:     "وضعیت",
		Done:       "انجام شده",
		Open:       "باز",
		Overdue:    "معوق",
		Total:      "مجموع",
		Page:       "صفحه",
		Of:         "از",
		None:       "-",
	},
}

func labelsFor(code string) labels {
	if l, ok := catalogue[code]; ok {
		return l
	}
	return catalogue["en"]
}

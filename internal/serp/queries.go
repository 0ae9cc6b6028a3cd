package serp

import "fmt"

// platformQueries is the generic WordPress discovery battery run on every
// discovery pass.
var platformQueries = []string{
	`"powered by wordpress" "contact us"`,
	`"proudly powered by wordpress"`,
	`inurl:wp-content "contact"`,
	`inurl:wp-login.php -site:wordpress.org`,
	`"leave a reply" "your email address will not be published"`,
}

// industryQueries maps an industry key to query templates appended to the
// generic battery. The sets are illustrative and easy to extend.
var industryQueries = map[string][]string{
	"dental": {
		`dentist "powered by wordpress"`,
		`dental clinic inurl:wp-content "appointment"`,
	},
	"legal": {
		`law firm "powered by wordpress"`,
		`attorney inurl:wp-content "free consultation"`,
	},
	"restaurant": {
		`restaurant "powered by wordpress" "menu"`,
		`cafe inurl:wp-content "reservations"`,
	},
	"realestate": {
		`real estate agency "powered by wordpress"`,
		`realtor inurl:wp-content "listings"`,
	},
	"fitness": {
		`gym "powered by wordpress" "membership"`,
		`personal trainer inurl:wp-content "book"`,
	},
	"construction": {
		`construction company "powered by wordpress"`,
		`roofing contractor inurl:wp-content "free estimate"`,
	},
}

// Industries returns the known industry keys.
func Industries() []string {
	keys := make([]string, 0, len(industryQueries))
	for k := range industryQueries {
		keys = append(keys, k)
	}
	return keys
}

// keywordQuery combines a caller keyword with the platform phrase.
func keywordQuery(keyword string) string {
	return fmt.Sprintf(`%s "powered by wordpress"`, keyword)
}

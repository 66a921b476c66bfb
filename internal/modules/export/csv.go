// README: CSV export of every user and their vehicle.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"Email", "Name", "Phone", "Role", "Vehicle Type", "Total Seats", "Family Members", "Status"}

// WriteCSV writes one row per participant. Vehicle columns are blank for users without a vehicle.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range r.Participants {
		row := []string{string(p.User.Email), p.User.Name, p.User.Phone, string(p.User.Role), "", "", "", ""}
		if v := p.Vehicle; v != nil {
			row[4] = v.VehicleType
			row[5] = strconv.Itoa(v.TotalSeats)
			row[6] = strconv.Itoa(v.FamilyMembers)
			row[7] = string(v.Status)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

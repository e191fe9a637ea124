package firestore

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

type supplementDoc struct {
	ID           string    `firestore:"id"`
	Name         string    `firestore:"name"`
	Dosage       string    `firestore:"dosage"`
	TimeCategory string    `firestore:"timeCategory"`
	TakenAt      time.Time `firestore:"takenAt"`
	Completed    bool      `firestore:"completed"`
}

type dayDoc struct {
	UserID      string          `firestore:"userId"`
	Date        string          `firestore:"date"`
	Supplements []supplementDoc `firestore:"supplements"`
	UpdatedAt   time.Time       `firestore:"updatedAt"`
}

type entryDoc struct {
	Name         string `firestore:"name"`
	Dosage       string `firestore:"dosage"`
	TimeCategory string `firestore:"timeCategory"`
}

type templateDoc struct {
	Entries   []entryDoc `firestore:"entries"`
	UpdatedAt time.Time  `firestore:"updatedAt"`
}

type libraryItemDoc struct {
	ID            string `firestore:"id"`
	Name          string `firestore:"name"`
	DefaultDosage string `firestore:"defaultDosage"`
	Category      string `firestore:"category"`
}

type libraryDoc struct {
	Library []libraryItemDoc `firestore:"library"`
}

type userDoc struct {
	Email       string    `firestore:"email"`
	Name        string    `firestore:"name"`
	PwdHash     []byte    `firestore:"pwdHash"`
	Salt        []byte    `firestore:"salt"`
	CreatedAt   time.Time `firestore:"createdAt"`
	LastLoginAt time.Time `firestore:"lastLoginAt"`
}

func dayID(userID uuid.UUID, d civil.Date) string { return userID.String() + "_" + d.String() }

func toSupplementDocs(in []model.Supplement) []supplementDoc {
	out := make([]supplementDoc, 0, len(in))
	for _, s := range in {
		out = append(out, supplementDoc{
			ID:           s.ID.String(),
			Name:         s.Name,
			Dosage:       s.Dosage,
			TimeCategory: string(s.TimeCategory),
			TakenAt:      s.TakenAt,
			Completed:    s.Completed,
		})
	}
	return out
}

func (d dayDoc) model() (model.DayData, error) {
	date, err := civil.ParseDate(d.Date)
	if err != nil {
		return model.DayData{}, err
	}
	out := model.DayData{Date: date, Supplements: make([]model.Supplement, 0, len(d.Supplements))}
	for _, s := range d.Supplements {
		// ids written by older clients may be free-form; keep the entry with a nil id
		id, _ := uuid.FromString(s.ID)
		out.Supplements = append(out.Supplements, model.Supplement{
			ID:           id,
			Name:         s.Name,
			Dosage:       s.Dosage,
			TimeCategory: model.TimeCategory(s.TimeCategory),
			TakenAt:      s.TakenAt,
			Completed:    s.Completed,
		})
	}
	return out, nil
}

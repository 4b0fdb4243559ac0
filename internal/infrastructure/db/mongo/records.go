package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

const (
	collectionFarms       = "farms"
	collectionAlerts      = "alerts"
	collectionCompliance  = "compliances"
	collectionFeedback    = "feedbacks"
	collectionAssessments = "assessments"
)

var newestFirst = bson.D{{Key: "_id", Value: -1}}

// ── Farms ─────────────────────────────────────────────────────────────────────

type mongoSensor struct {
	Name  string `bson:"name"`
	Value string `bson:"value"`
}

type mongoFarm struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Location  string             `bson:"location"`
	Type      string             `bson:"type"`
	Size      float64            `bson:"size"`
	Sensors   []mongoSensor      `bson:"sensors"`
	Owner     primitive.ObjectID `bson:"owner,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func NewFarmRepository(db *mongo.Database) *RecordRepository[domain.Farm, ports.FarmFilter, mongoFarm] {
	return newRecordRepository(db, recordMapping[domain.Farm, ports.FarmFilter, mongoFarm]{
		collection: collectionFarms,
		notFound:   domain.ErrFarmNotFound,
		idOf:       func(f *domain.Farm) string { return f.ID },
		toDoc: func(oid primitive.ObjectID, f *domain.Farm) mongoFarm {
			sensors := make([]mongoSensor, 0, len(f.Sensors))
			for _, s := range f.Sensors {
				sensors = append(sensors, mongoSensor(s))
			}
			return mongoFarm{
				ID:        oid,
				Name:      f.Name,
				Location:  f.Location,
				Type:      f.Type,
				Size:      f.Size,
				Sensors:   sensors,
				Owner:     optionalID(f.OwnerID),
				CreatedAt: f.CreatedAt,
				UpdatedAt: f.UpdatedAt,
			}
		},
		fromDoc: func(d *mongoFarm) *domain.Farm {
			sensors := make([]domain.Sensor, 0, len(d.Sensors))
			for _, s := range d.Sensors {
				sensors = append(sensors, domain.Sensor(s))
			}
			return &domain.Farm{
				ID:        d.ID.Hex(),
				Name:      d.Name,
				Location:  d.Location,
				Type:      d.Type,
				Size:      d.Size,
				Sensors:   sensors,
				OwnerID:   hexOrEmpty(d.Owner),
				CreatedAt: d.CreatedAt.UTC(),
				UpdatedAt: d.UpdatedAt.UTC(),
			}
		},
		filter: func(f ports.FarmFilter) bson.M {
			q := bson.M{}
			matchRef(q, "owner", f.OwnerID)
			matchString(q, "type", f.Type)
			return q
		},
		sort:    newestFirst,
		indexes: []mongo.IndexModel{ascending("owner")},
	})
}

// ── Alerts ────────────────────────────────────────────────────────────────────

type mongoAlert struct {
	ID        primitive.ObjectID `bson:"_id"`
	Farm      primitive.ObjectID `bson:"farm,omitempty"`
	Message   string             `bson:"message"`
	Severity  string             `bson:"severity"`
	Date      time.Time          `bson:"date"`
	CreatedBy primitive.ObjectID `bson:"created_by,omitempty"`
}

func NewAlertRepository(db *mongo.Database) *RecordRepository[domain.Alert, ports.AlertFilter, mongoAlert] {
	return newRecordRepository(db, recordMapping[domain.Alert, ports.AlertFilter, mongoAlert]{
		collection: collectionAlerts,
		notFound:   domain.ErrAlertNotFound,
		idOf:       func(a *domain.Alert) string { return a.ID },
		toDoc: func(oid primitive.ObjectID, a *domain.Alert) mongoAlert {
			return mongoAlert{
				ID:        oid,
				Farm:      optionalID(a.FarmID),
				Message:   a.Message,
				Severity:  string(a.Severity),
				Date:      a.Date,
				CreatedBy: optionalID(a.CreatedBy),
			}
		},
		fromDoc: func(d *mongoAlert) *domain.Alert {
			return &domain.Alert{
				ID:        d.ID.Hex(),
				FarmID:    hexOrEmpty(d.Farm),
				Message:   d.Message,
				Severity:  domain.AlertSeverity(d.Severity),
				Date:      d.Date.UTC(),
				CreatedBy: hexOrEmpty(d.CreatedBy),
			}
		},
		filter: func(f ports.AlertFilter) bson.M {
			q := bson.M{}
			matchRef(q, "farm", f.FarmID)
			matchString(q, "severity", f.Severity)
			return q
		},
		sort:    bson.D{{Key: "date", Value: -1}},
		indexes: []mongo.IndexModel{ascending("farm"), ascending("severity", "date")},
	})
}

// ── Compliance ────────────────────────────────────────────────────────────────

type mongoCompliance struct {
	ID     primitive.ObjectID `bson:"_id"`
	Farm   primitive.ObjectID `bson:"farm,omitempty"`
	Check  string             `bson:"check"`
	Status string             `bson:"status"`
	Date   time.Time          `bson:"date"`
}

func NewComplianceRepository(db *mongo.Database) *RecordRepository[domain.Compliance, ports.ComplianceFilter, mongoCompliance] {
	return newRecordRepository(db, recordMapping[domain.Compliance, ports.ComplianceFilter, mongoCompliance]{
		collection: collectionCompliance,
		notFound:   domain.ErrComplianceNotFound,
		idOf:       func(c *domain.Compliance) string { return c.ID },
		toDoc: func(oid primitive.ObjectID, c *domain.Compliance) mongoCompliance {
			return mongoCompliance{ID: oid, Farm: optionalID(c.FarmID), Check: c.Check, Status: c.Status, Date: c.Date}
		},
		fromDoc: func(d *mongoCompliance) *domain.Compliance {
			return &domain.Compliance{ID: d.ID.Hex(), FarmID: hexOrEmpty(d.Farm), Check: d.Check, Status: d.Status, Date: d.Date.UTC()}
		},
		filter: func(f ports.ComplianceFilter) bson.M {
			q := bson.M{}
			matchRef(q, "farm", f.FarmID)
			matchString(q, "status", f.Status)
			return q
		},
		sort:    bson.D{{Key: "date", Value: -1}},
		indexes: []mongo.IndexModel{ascending("farm")},
	})
}

// ── Feedback ──────────────────────────────────────────────────────────────────

type mongoFeedback struct {
	ID      primitive.ObjectID `bson:"_id"`
	User    primitive.ObjectID `bson:"user,omitempty"`
	Message string             `bson:"message"`
	Date    time.Time          `bson:"date"`
}

func NewFeedbackRepository(db *mongo.Database) *RecordRepository[domain.Feedback, ports.FeedbackFilter, mongoFeedback] {
	return newRecordRepository(db, recordMapping[domain.Feedback, ports.FeedbackFilter, mongoFeedback]{
		collection: collectionFeedback,
		notFound:   domain.ErrFeedbackNotFound,
		idOf:       func(f *domain.Feedback) string { return f.ID },
		toDoc: func(oid primitive.ObjectID, f *domain.Feedback) mongoFeedback {
			return mongoFeedback{ID: oid, User: optionalID(f.UserID), Message: f.Message, Date: f.Date}
		},
		fromDoc: func(d *mongoFeedback) *domain.Feedback {
			return &domain.Feedback{ID: d.ID.Hex(), UserID: hexOrEmpty(d.User), Message: d.Message, Date: d.Date.UTC()}
		},
		filter: func(f ports.FeedbackFilter) bson.M {
			q := bson.M{}
			matchRef(q, "user", f.UserID)
			return q
		},
		sort:    bson.D{{Key: "date", Value: -1}},
		indexes: []mongo.IndexModel{ascending("user")},
	})
}

// ── Assessments ───────────────────────────────────────────────────────────────

type mongoCategoryScore struct {
	Category string  `bson:"category"`
	Average  float64 `bson:"average"`
}

type mongoAssessment struct {
	ID              primitive.ObjectID   `bson:"_id"`
	User            primitive.ObjectID   `bson:"user,omitempty"`
	Farm            primitive.ObjectID   `bson:"farm,omitempty"`
	Answers         []int                `bson:"answers"`
	Score           int                  `bson:"score"`
	RiskLevel       string               `bson:"risk_level"`
	Categories      []mongoCategoryScore `bson:"category_scores"`
	PriorityAreas   []string             `bson:"priority_areas"`
	Recommendations []string             `bson:"recommendations"`
	CreatedAt       time.Time            `bson:"created_at"`
}

func NewAssessmentRepository(db *mongo.Database) *RecordRepository[domain.Assessment, ports.AssessmentFilter, mongoAssessment] {
	return newRecordRepository(db, recordMapping[domain.Assessment, ports.AssessmentFilter, mongoAssessment]{
		collection: collectionAssessments,
		notFound:   domain.ErrAssessmentNotFound,
		idOf:       func(a *domain.Assessment) string { return a.ID },
		toDoc: func(oid primitive.ObjectID, a *domain.Assessment) mongoAssessment {
			cats := make([]mongoCategoryScore, 0, len(a.Categories))
			for _, c := range a.Categories {
				cats = append(cats, mongoCategoryScore(c))
			}
			return mongoAssessment{
				ID:              oid,
				User:            optionalID(a.UserID),
				Farm:            optionalID(a.FarmID),
				Answers:         a.Answers,
				Score:           a.Score,
				RiskLevel:       string(a.RiskLevel),
				Categories:      cats,
				PriorityAreas:   a.PriorityAreas,
				Recommendations: a.Recommendations,
				CreatedAt:       a.CreatedAt,
			}
		},
		fromDoc: func(d *mongoAssessment) *domain.Assessment {
			cats := make([]domain.CategoryScore, 0, len(d.Categories))
			for _, c := range d.Categories {
				cats = append(cats, domain.CategoryScore(c))
			}
			return &domain.Assessment{
				ID:              d.ID.Hex(),
				UserID:          hexOrEmpty(d.User),
				FarmID:          hexOrEmpty(d.Farm),
				Answers:         d.Answers,
				Score:           d.Score,
				RiskLevel:       domain.RiskLevel(d.RiskLevel),
				Categories:      cats,
				PriorityAreas:   d.PriorityAreas,
				Recommendations: d.Recommendations,
				CreatedAt:       d.CreatedAt.UTC(),
			}
		},
		filter: func(f ports.AssessmentFilter) bson.M {
			q := bson.M{}
			matchRef(q, "user", f.UserID)
			matchRef(q, "farm", f.FarmID)
			return q
		},
		sort:    newestFirst,
		indexes: []mongo.IndexModel{ascending("user", "created_at")},
	})
}

package docstore

import "go.mongodb.org/mongo-driver/bson/primitive"

// Person is the tutorial's sample record. Zero-valued fields are left out of
// the stored document so records stay as sparse as the sample data.
type Person struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" yaml:"-"`
	Name    string             `bson:"name,omitempty" yaml:"name"`
	Age     int                `bson:"age,omitempty" yaml:"age"`
	City    string             `bson:"city,omitempty" yaml:"city"`
	Status  string             `bson:"status,omitempty" yaml:"status"`
	IsUSA   bool               `bson:"is_usa,omitempty" yaml:"is_usa"`
	Country string             `bson:"country,omitempty" yaml:"country"`
}

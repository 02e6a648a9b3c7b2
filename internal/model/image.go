package model

// Image describes an uploaded file (avatar or poster) after it has been
// stored in object storage. The shape is shared by users and films and is
// persisted as a JSON column.
type Image struct {
	URLOriginal string `json:"urlOriginal"`
	URL         string `json:"url"`
	Mimetype    string `json:"mimetype"`
	Size        int64  `json:"size"`
}

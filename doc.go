/*
go-cliptrack follows objects across the frames of a video and cuts a padded,
cropped clip of every object once it leaves the scene.

Detections for each frame are matched to the objects already being tracked
by nearest centroid in the tracker package.  The raw frames are held in a
bounded buffer (framebuf) until the clips that need them are written by the
clip package, either inline or by a pool of background workers, and recorded
in an optional SQL catalog.

See the command in example/cliptrack for a complete pipeline replaying
recorded detections over a video file.
*/
package cliptrack

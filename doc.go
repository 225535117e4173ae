/*
go-posekit is a post processing library for pose estimation and hand
landmark detection models.  It decodes raw model output tensors into
bounding boxes and keypoints, filters them by confidence, deduplicates
them with Non-Maximum Suppression (NMS), and maps coordinates between
model space, source frame space, and display space.

Running the neural network itself is delegated to an external inference
engine behind the Worker interface.  An adapter for ONNX Runtime is
provided in the engine/onnx subdirectory.

See example code and usage in the example subdirectory.
*/
package posekit
